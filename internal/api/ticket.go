package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"
)

// ticketRequest accepts the ticket number as a JSON string or number.
type ticketRequest struct {
	TicketNumber interface{} `json:"ticketNumber"`
}

func (t ticketRequest) number() string {
	switch v := t.TicketNumber.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// ticketResponse is the flat ticket metadata tagged with the number it was
// requested for.
type ticketResponse struct {
	*models.Ticket
	TicketNumber string `json:"ticketNumber"`
	TicketLink   string `json:"ticketLink"`
	Cached       bool   `json:"cached"`
}

func (s *Server) handleTicket(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tickets == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	var req ticketRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	number := req.number()
	if number == "" {
		s.writeError(w, r, commonerrors.NewTicketNumberRequiredError())
		return
	}

	lookup, err := s.deps.Tickets.Find(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ticketResponse{
		Ticket:       lookup.Ticket,
		TicketNumber: lookup.TicketNumber,
		TicketLink:   lookup.TicketLink,
		Cached:       lookup.Cached,
	})
}

type draftTicketResponse struct {
	Applied bool           `json:"applied"`
	Ticket  ticketResponse `json:"ticket"`
	Draft   draftView      `json:"draft"`
}

// handleDraftTicket looks up the ticket for the draft and prefills its
// general information. A ticketNumber in the body is set on the draft
// first. The prefill is dropped when the draft's ticket number changed
// while the lookup was in flight.
func (s *Server) handleDraftTicket(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tickets == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	var req ticketRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}

	number := req.number()
	if number != "" {
		if err := sess.Store.SetGeneralInfo(evaluation.FieldTicketNumber, number); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		number = strings.TrimSpace(sess.Store.Snapshot().GeneralInfo.TicketNumber)
	}
	if number == "" {
		s.writeError(w, r, commonerrors.NewTicketNumberRequiredError())
		return
	}

	lookup, err := s.deps.Tickets.Find(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	applied := sess.Store.PrefillFromLookup(*lookup)
	if !applied {
		s.logger.Info("stale ticket lookup dropped", map[string]interface{}{
			"evaluator":    sess.Evaluator,
			"ticketNumber": lookup.TicketNumber,
		})
	}

	writeJSON(w, http.StatusOK, draftTicketResponse{
		Applied: applied,
		Ticket: ticketResponse{
			Ticket:       lookup.Ticket,
			TicketNumber: lookup.TicketNumber,
			TicketLink:   lookup.TicketLink,
			Cached:       lookup.Cached,
		},
		Draft: viewOf(sess),
	})
}
