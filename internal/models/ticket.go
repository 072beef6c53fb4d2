// internal/models/ticket.go
package models

// Ticket is the helpdesk metadata returned by the ticket lookup.
// Names resolved through secondary lookups are empty when those fail.
type Ticket struct {
	ID               int64    `json:"id"`
	Status           string   `json:"status"`
	Priority         string   `json:"priority"`
	CreatedAt        string   `json:"created_at"`
	RequesterID      int64    `json:"requester_id"`
	RequesterName    string   `json:"requester_name"`
	Tags             []string `json:"tags"`
	OrganizationID   int64    `json:"organization_id"`
	OrganizationName string   `json:"organization_name"`
	AssigneeID       int64    `json:"assignee_id"`
	AssigneeName     string   `json:"assignee_name"`
	AssigneeEmail    string   `json:"assignee_email"`
}

// TicketLookup is the response of a lookup, tagged with the ticket number
// it was requested for so callers can drop responses for stale input.
type TicketLookup struct {
	TicketNumber string  `json:"ticketNumber"`
	TicketLink   string  `json:"ticketLink"`
	Ticket       *Ticket `json:"ticket"`
	Cached       bool    `json:"cached"`
}
