// internal/evaluation/records/filter.go
package records

import (
	"context"
	"fmt"
	"regexp"

	"formquali-workers/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var dateLayout = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Filter narrows an evaluation search. Zero values match everything.
// From and To bound the service date (yyyy-mm-dd, inclusive).
type Filter struct {
	TicketNumber    string   `json:"ticketNumber,omitempty"`
	Analista        string   `json:"analista,omitempty"`
	Monitor         string   `json:"monitor,omitempty"`
	Casa            string   `json:"casa,omitempty"`
	From            string   `json:"from,omitempty"`
	To              string   `json:"to,omitempty"`
	CriticalFailure *bool    `json:"criticalFailure,omitempty"`
	MaxScore        *float64 `json:"maxScore,omitempty"`
	Page            int      `json:"page,omitempty"`
	Size            int      `json:"size,omitempty"`
}

// Searcher is implemented by the index and by the SQL fallback.
type Searcher interface {
	Search(ctx context.Context, filter Filter) (*models.MonitoriaSearchResult, error)
}

// Validate rejects malformed date bounds.
func (f Filter) Validate() error {
	for name, value := range map[string]string{"from": f.From, "to": f.To} {
		if value != "" && !dateLayout.MatchString(value) {
			return fmt.Errorf("%s must be yyyy-mm-dd, got %q", name, value)
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return fmt.Errorf("from %s is after to %s", f.From, f.To)
	}
	return nil
}

// Normalized clamps paging to sane bounds. Pages start at 1.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	return f
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Size
}
