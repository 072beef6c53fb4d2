// Package zendesk reads ticket metadata used to prefill an evaluation.
package zendesk

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	commonhttp "formquali-workers/internal/common/http"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"
)

type ticketEnvelope struct {
	Ticket struct {
		ID             int64    `json:"id"`
		Status         string   `json:"status"`
		Priority       string   `json:"priority"`
		CreatedAt      string   `json:"created_at"`
		RequesterID    int64    `json:"requester_id"`
		Tags           []string `json:"tags"`
		OrganizationID int64    `json:"organization_id"`
		AssigneeID     int64    `json:"assignee_id"`
	} `json:"ticket"`
}

type organizationEnvelope struct {
	Organization struct {
		Name string `json:"name"`
	} `json:"organization"`
}

type userEnvelope struct {
	User struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type Client struct {
	baseURL   string
	subdomain string
	authz     string
	http      *commonhttp.Client
	logger    logger.Logger
}

// NewClient authenticates with an API token ("<email>/token:<token>").
// baseURL is the /api/v2 root.
func NewClient(baseURL, subdomain, email, apiToken string, timeout time.Duration, log logger.Logger) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(email + "/token:" + apiToken))
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		subdomain: subdomain,
		authz:     "Basic " + creds,
		http:      commonhttp.NewClient(timeout),
		logger:    log,
	}
}

// TicketLink is the agent URL of a ticket.
func TicketLink(subdomain, ticketNumber string) string {
	return fmt.Sprintf("https://%s.zendesk.com/agent/tickets/%s", subdomain, ticketNumber)
}

func (c *Client) Link(ticketNumber string) string {
	return TicketLink(c.subdomain, ticketNumber)
}

// Ticket fetches a ticket and resolves its organization, assignee and
// requester names. Failed secondary lookups leave those names empty.
func (c *Client) Ticket(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	ticketNumber = strings.TrimSpace(ticketNumber)
	if ticketNumber == "" {
		return nil, commonerrors.NewTicketNumberRequiredError()
	}

	var env ticketEnvelope
	if err := c.get(ctx, fmt.Sprintf("tickets/%s.json", url.PathEscape(ticketNumber)), &env); err != nil {
		return nil, c.lookupError(ctx, ticketNumber, err)
	}

	t := env.Ticket
	ticket := &models.Ticket{
		ID:             t.ID,
		Status:         t.Status,
		Priority:       t.Priority,
		CreatedAt:      t.CreatedAt,
		RequesterID:    t.RequesterID,
		Tags:           t.Tags,
		OrganizationID: t.OrganizationID,
		AssigneeID:     t.AssigneeID,
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}

	if t.OrganizationID != 0 {
		var org organizationEnvelope
		if err := c.get(ctx, fmt.Sprintf("organizations/%d.json", t.OrganizationID), &org); err != nil {
			c.warn("organization lookup failed", ticketNumber, err)
		} else {
			ticket.OrganizationName = org.Organization.Name
		}
	}
	if t.AssigneeID != 0 {
		var user userEnvelope
		if err := c.get(ctx, fmt.Sprintf("users/%d.json", t.AssigneeID), &user); err != nil {
			c.warn("assignee lookup failed", ticketNumber, err)
		} else {
			ticket.AssigneeName = user.User.Name
			ticket.AssigneeEmail = user.User.Email
		}
	}
	if t.RequesterID != 0 {
		var user userEnvelope
		if err := c.get(ctx, fmt.Sprintf("users/%d.json", t.RequesterID), &user); err != nil {
			c.warn("requester lookup failed", ticketNumber, err)
		} else {
			ticket.RequesterName = user.User.Name
		}
	}

	return ticket, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.http.DoJSON(ctx, http.MethodGet, c.baseURL+"/"+path,
		map[string]string{"Authorization": c.authz}, nil, out)
}

func (c *Client) lookupError(ctx context.Context, ticketNumber string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return commonerrors.NewTicketLookupTimeoutError(ticketNumber)
	}
	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return commonerrors.NewTicketNotFoundError(ticketNumber)
		}
		return commonerrors.NewTicketLookupError(statusErr.StatusCode, err)
	}
	return commonerrors.NewTicketLookupError(0, err)
}

func (c *Client) warn(msg, ticketNumber string, err error) {
	c.logger.Warn(msg, map[string]interface{}{
		"ticketNumber": ticketNumber,
		"error":        err,
	})
}
