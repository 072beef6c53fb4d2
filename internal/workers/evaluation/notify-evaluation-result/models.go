// internal/workers/evaluation/notify-evaluation-result/models.go
package notifyevaluationresult

import "formquali-workers/internal/evaluation"

// Input matches the variables of the evaluation-submitted message.
type Input struct {
	RecordID      string                  `json:"recordId"`
	TicketNumber  string                  `json:"ticketNumber"`
	TicketLink    string                  `json:"ticketLink"`
	Casa          string                  `json:"casa"`
	Monitor       string                  `json:"monitor"`
	Analista      string                  `json:"analista"`
	AnalistaEmail string                  `json:"analistaEmail,omitempty"`
	Score         *evaluation.ScoreResult `json:"score,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	Channels       int    `json:"channels"`
	Failed         int    `json:"failedChannels"`
	SentAt         string `json:"sentAt"`
}
