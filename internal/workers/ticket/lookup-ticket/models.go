// internal/workers/ticket/lookup-ticket/models.go
package lookupticket

import (
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"
)

type Input struct {
	TicketNumber string `json:"ticketNumber"`
}

// Output carries the raw ticket and the general information it prefills.
type Output struct {
	TicketNumber string                 `json:"ticketNumber"`
	TicketLink   string                 `json:"ticketLink"`
	Ticket       *models.Ticket         `json:"ticket"`
	Cached       bool                   `json:"cached"`
	GeneralInfo  evaluation.GeneralInfo `json:"generalInfo"`
}
