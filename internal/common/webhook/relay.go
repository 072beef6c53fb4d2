// Package webhook relays submitted evaluations to the configured
// automation endpoint.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	commonhttp "formquali-workers/internal/common/http"
	"formquali-workers/internal/common/logger"
)

type Relay struct {
	url    string
	http   *commonhttp.Client
	logger logger.Logger
}

func NewRelay(url string, timeout time.Duration, log logger.Logger) *Relay {
	return &Relay{url: url, http: commonhttp.NewClient(timeout), logger: log}
}

func (r *Relay) Configured() bool {
	return r.url != ""
}

// Notify posts the evaluation payload wrapped as {"data": payload}.
func (r *Relay) Notify(ctx context.Context, payload map[string]interface{}) error {
	_, err := r.Forward(ctx, map[string]interface{}{"data": payload})
	return err
}

// Forward posts body unchanged and returns the endpoint's response. A JSON
// response is returned as-is, anything else as a JSON string.
func (r *Relay) Forward(ctx context.Context, body interface{}) (json.RawMessage, error) {
	if !r.Configured() {
		return nil, commonerrors.NewWebhookNotConfiguredError()
	}

	var raw []byte
	if err := r.http.DoJSON(ctx, http.MethodPost, r.url, nil, body, &raw); err != nil {
		return nil, commonerrors.NewWebhookDeliveryError(err)
	}

	r.logger.Debug("webhook delivered", map[string]interface{}{"bytes": len(raw)})

	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	if json.Valid(raw) {
		return json.RawMessage(raw), nil
	}
	quoted, _ := json.Marshal(string(raw))
	return json.RawMessage(quoted), nil
}
