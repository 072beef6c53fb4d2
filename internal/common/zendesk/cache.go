// internal/common/zendesk/cache.go
package zendesk

import (
	"context"
	"errors"
	"strings"
	"time"

	"formquali-workers/internal/common/database"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/models"
)

const cacheKeyPrefix = "zendesk:ticket:"

// TicketSource is the uncached lookup.
type TicketSource interface {
	Ticket(ctx context.Context, ticketNumber string) (*models.Ticket, error)
	Link(ticketNumber string) string
}

// Lookup serves ticket metadata from Redis, falling back to Zendesk and
// caching successful results. Cache failures only cost a round trip.
type Lookup struct {
	source TicketSource
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewLookup(source TicketSource, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *Lookup {
	return &Lookup{source: source, cache: cache, ttl: ttl, logger: log}
}

// Find returns the ticket tagged with the ticket number it was asked for.
func (l *Lookup) Find(ctx context.Context, ticketNumber string) (*models.TicketLookup, error) {
	ticketNumber = strings.TrimSpace(ticketNumber)
	result := &models.TicketLookup{TicketNumber: ticketNumber}

	if l.cache != nil && ticketNumber != "" {
		var cached models.Ticket
		err := l.cache.GetJSON(ctx, cacheKeyPrefix+ticketNumber, &cached)
		switch {
		case err == nil:
			metrics.TicketLookups.WithLabelValues("cache_hit").Inc()
			result.Ticket = &cached
			result.TicketLink = l.source.Link(ticketNumber)
			result.Cached = true
			return result, nil
		case !errors.Is(err, database.ErrCacheMiss):
			l.logger.Warn("ticket cache read failed", map[string]interface{}{
				"ticketNumber": ticketNumber,
				"error":        err,
			})
		}
	}

	ticket, err := l.source.Ticket(ctx, ticketNumber)
	if err != nil {
		metrics.TicketLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TicketLookups.WithLabelValues("fetched").Inc()

	if l.cache != nil {
		if err := l.cache.SetJSON(ctx, cacheKeyPrefix+ticketNumber, ticket, l.ttl); err != nil {
			l.logger.Warn("ticket cache write failed", map[string]interface{}{
				"ticketNumber": ticketNumber,
				"error":        err,
			})
		}
	}

	result.Ticket = ticket
	result.TicketLink = l.source.Link(ticketNumber)
	return result, nil
}
