// Package drafts keeps each evaluator's in-progress form in Redis and owns
// the per-evaluator answer store and submission state.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"

	"github.com/redis/go-redis/v9"
)

// Persister snapshots forms under <prefix>:<evaluator>. Writes are last
// write wins.
type Persister struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewPersister(rdb *redis.Client, prefix string, ttl time.Duration, log logger.Logger) *Persister {
	return &Persister{rdb: rdb, prefix: prefix, ttl: ttl, logger: log}
}

func (p *Persister) Key(evaluator string) string {
	return fmt.Sprintf("%s:%s", p.prefix, evaluator)
}

func (p *Persister) Save(ctx context.Context, evaluator string, form evaluation.FormData) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := p.rdb.Set(ctx, p.Key(evaluator), raw, p.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the saved draft. A missing or unreadable snapshot yields an
// empty form and found=false; only Redis failures are errors.
func (p *Persister) Load(ctx context.Context, evaluator string) (form evaluation.FormData, found bool, err error) {
	raw, err := p.rdb.Get(ctx, p.Key(evaluator)).Bytes()
	if errors.Is(err, redis.Nil) {
		return evaluation.NewFormData(), false, nil
	}
	if err != nil {
		return evaluation.NewFormData(), false, fmt.Errorf("load draft: %w", err)
	}

	if err := json.Unmarshal(raw, &form); err != nil {
		p.logger.Warn("ignoring unreadable draft", map[string]interface{}{
			"evaluator": evaluator,
			"error":     err,
		})
		return evaluation.NewFormData(), false, nil
	}
	form.Normalize()
	return form, true, nil
}

func (p *Persister) Delete(ctx context.Context, evaluator string) error {
	return p.rdb.Del(ctx, p.Key(evaluator)).Err()
}
