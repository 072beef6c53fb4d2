// Package notify announces saved evaluations: an e-mail to the analyst, and
// for critical failures an SNS alert and a Discord message.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"

	"github.com/google/uuid"
)

const DefaultSubject = "Resultado da sua monitoria"

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, text, html string) (string, error)
}

type AlertPublisher interface {
	Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error)
}

type ChannelPoster interface {
	PostResult(ctx context.Context, result models.EvaluationResult) (string, error)
}

// RecipientResolver finds the analyst e-mail for a ticket.
type RecipientResolver func(ctx context.Context, ticketNumber string) (string, error)

type Option func(*Notifier)

func WithEmail(sender EmailSender, subject string) Option {
	return func(n *Notifier) {
		n.email = sender
		if subject != "" {
			n.subject = subject
		}
	}
}

func WithAlerts(publisher AlertPublisher) Option {
	return func(n *Notifier) { n.alerts = publisher }
}

func WithChannel(poster ChannelPoster) Option {
	return func(n *Notifier) { n.channel = poster }
}

func WithRecipientResolver(resolve RecipientResolver) Option {
	return func(n *Notifier) { n.resolve = resolve }
}

type Notifier struct {
	email   EmailSender
	alerts  AlertPublisher
	channel ChannelPoster
	resolve RecipientResolver
	subject string
	logger  logger.Logger
	now     func() time.Time
}

func New(log logger.Logger, opts ...Option) *Notifier {
	n := &Notifier{subject: DefaultSubject, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send delivers result on every configured channel. Channel failures are
// reported in the result, never returned.
func (n *Notifier) Send(ctx context.Context, result models.EvaluationResult) *models.NotificationReport {
	report := &models.NotificationReport{
		NotificationID: uuid.New().String(),
		RecordID:       result.RecordID,
		SentAt:         n.now().UTC().Format(time.RFC3339),
	}

	if result.AnalistaEmail == "" && n.resolve != nil && n.email != nil {
		email, err := n.resolve(ctx, result.TicketNumber)
		if err != nil {
			n.logger.Warn("analyst e-mail lookup failed", map[string]interface{}{
				"ticketNumber": result.TicketNumber,
				"error":        err.Error(),
			})
		}
		result.AnalistaEmail = email
	}

	if n.email != nil && result.AnalistaEmail != "" {
		text, html := RenderEmail(result)
		id, err := n.email.SendEmail(ctx, result.AnalistaEmail, n.subject, text, html)
		report.Channels = append(report.Channels, delivery(models.ChannelEmail, result.AnalistaEmail, id, err))
	}

	if result.FalhaCritica {
		if n.alerts != nil {
			id, err := n.alerts.Publish(ctx, alertSubject(result), RenderAlert(result), map[string]string{
				"casa":     result.Casa,
				"analista": result.Analista,
			})
			report.Channels = append(report.Channels, delivery(models.ChannelSNS, "", id, err))
		}
		if n.channel != nil {
			id, err := n.channel.PostResult(ctx, result)
			report.Channels = append(report.Channels, delivery(models.ChannelDiscord, "", id, err))
		}
	}

	report.Status = overall(report.Channels)
	for _, ch := range report.Channels {
		if ch.Status == models.NotificationFailed {
			n.logger.Error("notification failed", map[string]interface{}{
				"channel":  ch.Channel,
				"recordId": result.RecordID,
				"error":    ch.Error,
			})
		}
	}
	return report
}

func (n *Notifier) Name() string { return "result-notification" }

// OnSubmitted announces an evaluation saved by the submission flow.
func (n *Notifier) OnSubmitted(ctx context.Context, record *models.Monitoria, score evaluation.ScoreResult) error {
	result := ResultFromRecord(record)
	result.NotaFinal = score.FinalScore
	result.FalhaCritica = score.IsCriticalFailure

	report := n.Send(ctx, result)
	for _, ch := range report.Channels {
		if ch.Status == models.NotificationFailed {
			return commonerrors.NewNotificationSendFailedError(ch.Channel, errors.New(ch.Error))
		}
	}
	return nil
}

// ResultFromRecord collects the announced fields of a stored evaluation.
func ResultFromRecord(r *models.Monitoria) models.EvaluationResult {
	result := models.EvaluationResult{
		RecordID:        r.ID,
		TicketNumber:    r.TicketNumber,
		TicketLink:      r.TicketLink,
		Casa:            r.Casa,
		DataAtendimento: r.DataAtendimento,
		Monitor:         r.Monitor,
		Analista:        r.Analista,
		NotaFinal:       r.NotaFinal,
		FalhaCritica:    r.FalhaCritica,
	}
	for question, answer := range r.RespostasNcg {
		if answer.Occurred != nil && *answer.Occurred == string(evaluation.RatingNaoConforme) {
			result.FailedNcg = append(result.FailedNcg, question)
		}
	}
	sort.Slice(result.FailedNcg, func(i, j int) bool {
		return questionNumber(result.FailedNcg[i]) < questionNumber(result.FailedNcg[j])
	})
	if len(result.FailedNcg) > 0 {
		result.FalhaCritica = true
	}
	return result
}

func delivery(channel, recipient, id string, err error) models.Notification {
	n := models.Notification{Channel: channel, Recipient: recipient, MessageID: id, Status: models.NotificationSent}
	if err != nil {
		n.Status = models.NotificationFailed
		n.Error = err.Error()
	}
	return n
}

func overall(channels []models.Notification) models.NotificationStatus {
	if len(channels) == 0 {
		return models.NotificationDisabled
	}
	for _, ch := range channels {
		if ch.Status == models.NotificationFailed {
			return models.NotificationFailed
		}
	}
	return models.NotificationSent
}

func alertSubject(r models.EvaluationResult) string {
	return fmt.Sprintf("Falha crítica NCG - ticket #%s", r.TicketNumber)
}

// questionNumber reads the leading "13" of "13 - NCG - ...".
func questionNumber(question string) int {
	var n int
	fmt.Sscanf(strings.TrimSpace(question), "%d", &n)
	return n
}
