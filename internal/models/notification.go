// internal/models/notification.go
package models

type NotificationStatus string

const (
	NotificationSent     NotificationStatus = "sent"
	NotificationFailed   NotificationStatus = "failed"
	NotificationDisabled NotificationStatus = "disabled"
)

// Notification channels.
const (
	ChannelEmail   = "email"
	ChannelSNS     = "sns"
	ChannelDiscord = "discord"
)

// EvaluationResult is what gets announced once an evaluation is saved.
type EvaluationResult struct {
	RecordID        string   `json:"recordId"`
	TicketNumber    string   `json:"ticketNumber"`
	TicketLink      string   `json:"ticketLink"`
	Casa            string   `json:"casa"`
	DataAtendimento string   `json:"dataAtendimento"`
	Monitor         string   `json:"monitor"`
	Analista        string   `json:"analista"`
	AnalistaEmail   string   `json:"analistaEmail,omitempty"`
	NotaFinal       float64  `json:"notaFinal"`
	FalhaCritica    bool     `json:"falhaCritica"`
	FailedNcg       []string `json:"failedNcg,omitempty"`
}

// Notification is the delivery outcome on one channel.
type Notification struct {
	Channel   string             `json:"channel"`
	Recipient string             `json:"recipient,omitempty"`
	Status    NotificationStatus `json:"status"`
	MessageID string             `json:"messageId,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// NotificationReport aggregates the channels used for one result.
type NotificationReport struct {
	NotificationID string             `json:"notificationId"`
	RecordID       string             `json:"recordId"`
	Status         NotificationStatus `json:"status"`
	Channels       []Notification     `json:"channels"`
	SentAt         string             `json:"sentAt"`
}
