package submission

import (
	"context"
	"time"

	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"
)

// MessageSubmitted is the process message published for every saved
// evaluation, correlated by record id.
const MessageSubmitted = "evaluation-submitted"

type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, ttl time.Duration, variables interface{}) error
}

// ProcessTrigger hands saved evaluations to the workflow engine, which
// runs the follow-up workers such as result notification.
type ProcessTrigger struct {
	publisher MessagePublisher
	ttl       time.Duration
}

func NewProcessTrigger(publisher MessagePublisher, ttl time.Duration) *ProcessTrigger {
	return &ProcessTrigger{publisher: publisher, ttl: ttl}
}

func (p *ProcessTrigger) Name() string { return "process-trigger" }

func (p *ProcessTrigger) OnSubmitted(ctx context.Context, record *models.Monitoria, score evaluation.ScoreResult) error {
	return p.publisher.PublishMessage(ctx, MessageSubmitted, record.ID, p.ttl, map[string]interface{}{
		"recordId":     record.ID,
		"ticketNumber": record.TicketNumber,
		"ticketLink":   record.TicketLink,
		"analista":     record.Analista,
		"monitor":      record.Monitor,
		"casa":         record.Casa,
		"score":        score,
	})
}
