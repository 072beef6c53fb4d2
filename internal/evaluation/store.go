package evaluation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"formquali-workers/internal/models"
)

// Subscriber receives a copy of the form after every accepted mutation,
// tagged with the store version that produced it. Concurrent mutations may
// be delivered out of order; a subscriber that keeps state must drop a
// version older than the last one it handled.
type Subscriber func(version uint64, form FormData)

// Store owns one form and the set of fields currently flagged invalid.
// Every accepted mutation is published to the subscribers in registration
// order, after the lock is released.
type Store struct {
	mu          sync.Mutex
	data        FormData
	version     uint64
	invalid     map[FieldID]struct{}
	subscribers []Subscriber
}

// NewStore returns a store holding an empty form.
func NewStore() *Store {
	return &Store{
		data:    NewFormData(),
		invalid: make(map[FieldID]struct{}),
	}
}

// Subscribe registers fn; it is not called for the current state.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Snapshot returns a deep copy of the current form.
func (s *Store) Snapshot() FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Version counts the accepted mutations.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// InvalidFields returns the flagged fields in form order.
func (s *Store) InvalidFields() []FieldID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedFields(s.invalid)
}

// IsInvalid reports whether id is flagged.
func (s *Store) IsInvalid(id FieldID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.invalid[id]
	return ok
}

// SetInvalidFields replaces the invalid set, typically with the result of
// a validation run.
func (s *Store) SetInvalidFields(ids []FieldID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalid = make(map[FieldID]struct{}, len(ids))
	for _, id := range ids {
		s.invalid[id] = struct{}{}
	}
}

// SetGeneralInfo sets a general information field. Changing the ticket
// number drops the link built for the previous ticket.
func (s *Store) SetGeneralInfo(id FieldID, value string) error {
	if !isGeneralField(id) {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	s.mutate(func(f *FormData) {
		if id == FieldTicketNumber && f.GeneralInfo.TicketNumber != value {
			f.GeneralInfo.TicketLink = ""
		}
		_ = f.GeneralInfo.set(id, value)
		delete(s.invalid, id)
	})
	return nil
}

// SetTicketLink stores the helpdesk link of the current ticket.
func (s *Store) SetTicketLink(link string) {
	s.mutate(func(f *FormData) {
		f.GeneralInfo.TicketLink = link
	})
}

// ApplyTicketPrefill copies the looked-up ticket metadata into the general
// information section.
func (s *Store) ApplyTicketPrefill(ticket models.Ticket, link string) {
	s.mutate(func(f *FormData) {
		f.GeneralInfo.Casa = ticket.OrganizationName
		f.GeneralInfo.Tabulacao = strings.Join(ticket.Tags, ", ")
		f.GeneralInfo.Analista = ticket.AssigneeName
		f.GeneralInfo.TicketLink = link
		if ticket.AssigneeName != "" {
			delete(s.invalid, FieldAnalista)
		}
	})
}

// PrefillFromLookup applies the lookup's ticket metadata only while the form
// still holds the ticket number it was requested for. A response for an
// older number is dropped and false is returned.
func (s *Store) PrefillFromLookup(lookup models.TicketLookup) bool {
	if lookup.Ticket == nil {
		return false
	}
	ticket := *lookup.Ticket
	return s.mutateIf(func(f *FormData) bool {
		if strings.TrimSpace(f.GeneralInfo.TicketNumber) != lookup.TicketNumber {
			return false
		}
		f.GeneralInfo.Casa = ticket.OrganizationName
		f.GeneralInfo.Tabulacao = strings.Join(ticket.Tags, ", ")
		f.GeneralInfo.Analista = ticket.AssigneeName
		f.GeneralInfo.TicketLink = lookup.TicketLink
		if ticket.AssigneeName != "" {
			delete(s.invalid, FieldAnalista)
		}
		return true
	})
}

func (s *Store) SetChecklistRating(key ChecklistKey, rating RatingOption) error {
	if _, ok := ChecklistQuestions[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if !rating.Valid() {
		return fmt.Errorf("invalid rating %q for %s", rating, key)
	}
	s.mutate(func(f *FormData) {
		item := f.ChecklistItems[key]
		item.Rating = Rating(rating)
		f.ChecklistItems[key] = item
		delete(s.invalid, FieldID(key))
	})
	return nil
}

func (s *Store) SetChecklistJustification(key ChecklistKey, text string) error {
	if _, ok := ChecklistQuestions[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	s.mutate(func(f *FormData) {
		item := f.ChecklistItems[key]
		item.Justification = text
		f.ChecklistItems[key] = item
	})
	return nil
}

// SetNcgOccurred records whether a critical failure happened. Only
// Conforme and Não conforme are accepted.
func (s *Store) SetNcgOccurred(key NcgKey, occurred RatingOption) error {
	if _, ok := NcgQuestions[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if occurred != RatingConforme && occurred != RatingNaoConforme {
		return fmt.Errorf("invalid occurrence %q for %s", occurred, key)
	}
	s.mutate(func(f *FormData) {
		item := f.NcgItems[key]
		item.Occurred = Rating(occurred)
		f.NcgItems[key] = item
		delete(s.invalid, FieldID(key))
	})
	return nil
}

func (s *Store) SetNcgJustification(key NcgKey, text string) error {
	if _, ok := NcgQuestions[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	s.mutate(func(f *FormData) {
		item := f.NcgItems[key]
		item.Justification = text
		f.NcgItems[key] = item
	})
	return nil
}

// SetCustomerExperience sets a customer experience answer and clears the
// flags of conditional questions whose condition no longer holds.
func (s *Store) SetCustomerExperience(id FieldID, value string) error {
	if !isCustomerExperienceField(id) {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	s.mutate(func(f *FormData) {
		_ = f.CustomerExperience.set(id, value)
		delete(s.invalid, id)
		switch {
		case id == FieldFCR && value != AnswerNao:
			delete(s.invalid, FieldFCRResponsible)
		case id == FieldDissatisfactionDuringContact && value != AnswerSim:
			delete(s.invalid, FieldAttemptToReverseNegativeImage)
		}
	})
	return nil
}

// SetField dispatches to the section setter owning id. Checklist and NCG
// values must be rating strings.
func (s *Store) SetField(id FieldID, value string) error {
	switch {
	case isGeneralField(id):
		return s.SetGeneralInfo(id, value)
	case isCustomerExperienceField(id):
		return s.SetCustomerExperience(id, value)
	}
	if key, ok := ParseChecklistKey(string(id)); ok {
		return s.SetChecklistRating(key, RatingOption(value))
	}
	if key, ok := ParseNcgKey(string(id)); ok {
		return s.SetNcgOccurred(key, RatingOption(value))
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, id)
}

// Load replaces the whole form, e.g. when restoring a saved draft.
func (s *Store) Load(form FormData) {
	form = form.Clone()
	form.Normalize()
	s.mutate(func(f *FormData) {
		*f = form
		s.invalid = make(map[FieldID]struct{})
	})
}

// Reset restores the empty form.
func (s *Store) Reset() {
	s.Load(NewFormData())
}

func (s *Store) mutate(fn func(*FormData)) {
	s.mutateIf(func(f *FormData) bool {
		fn(f)
		return true
	})
}

// mutateIf publishes only when fn reports a change.
func (s *Store) mutateIf(fn func(*FormData) bool) bool {
	s.mu.Lock()
	if !fn(&s.data) {
		s.mu.Unlock()
		return false
	}
	s.version++
	version := s.version
	snapshot := s.data.Clone()
	subscribers := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub(version, snapshot)
	}
	return true
}

func sortedFields(set map[FieldID]struct{}) []FieldID {
	out := make([]FieldID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return FieldLess(out[i], out[j]) })
	return out
}
