// Package camunda connects to the Zeebe gateway, runs job workers and
// publishes process messages.
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	commonerrors "formquali-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client is the gateway connection shared by the job workers and the
// submission message trigger.
type Client struct {
	zb     zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	Retry                  *RetryConfig
}

// RetryConfig bounds the retries of gateway commands. Only unavailable and
// timed out gateways are retried.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

// delay doubles BaseDelay for every attempt already made, capped at MaxDelay.
func (r *RetryConfig) delay(attempt int) time.Duration {
	d := r.BaseDelay << (attempt - 1)
	if d <= 0 || d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

// NewClientWithConfig dials the gateway and fails unless the topology
// answers within ConnectionTimeout.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.Retry == nil {
		config.Retry = DefaultRetryConfig
	}
	if config.ConnectionTimeout <= 0 {
		config.ConnectionTimeout = 10 * time.Second
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}

	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{zb: zb, config: config}
	if err := c.HealthCheck(context.Background()); err != nil {
		zb.Close()
		return nil, fmt.Errorf("gateway %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.zb
}

func (c *Client) Close() error {
	return c.zb.Close()
}

// HealthCheck asks the gateway for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.zb.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// PublishMessage publishes a process message correlated by correlationKey.
func (c *Client) PublishMessage(ctx context.Context, name, correlationKey string, ttl time.Duration, variables interface{}) error {
	return c.retry(ctx, "publish "+name, func(ctx context.Context) error {
		cmd, err := c.zb.NewPublishMessageCommand().
			MessageName(name).
			CorrelationKey(correlationKey).
			TimeToLive(ttl).
			VariablesFromObject(variables)
		if err != nil {
			return err
		}
		reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
		_, err = cmd.Send(reqCtx)
		return err
	})
}

// retry runs fn until it succeeds, fails permanently or exhausts the retry
// budget. The returned error is always a StandardError.
func (c *Client) retry(ctx context.Context, operation string, fn func(context.Context) error) error {
	policy := c.config.Retry
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		kind := classify(err)
		if !kind.transient() || attempt > policy.MaxRetries {
			return kind.standardError(operation, attempt, err)
		}

		select {
		case <-time.After(policy.delay(attempt)):
		case <-ctx.Done():
			return commonerrors.NewTimeoutError("zeebe",
				fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt, ctx.Err()))
		}
	}
}

type failureKind int

const (
	failureUnknown failureKind = iota
	failureUnavailable
	failureTimeout
	failureNotFound
	failureConflict
	failureDenied
)

// failurePhrases are matched in order against the lowercased gRPC message.
var failurePhrases = []struct {
	phrase string
	kind   failureKind
}{
	{"connection refused", failureUnavailable},
	{"connection reset", failureUnavailable},
	{"broken pipe", failureUnavailable},
	{"unavailable", failureUnavailable},
	{"unreachable", failureUnavailable},
	{"deadline exceeded", failureTimeout},
	{"timeout", failureTimeout},
	{"not found", failureNotFound},
	{"already exists", failureConflict},
	{"permission denied", failureDenied},
	{"unauthorized", failureDenied},
}

func classify(err error) failureKind {
	msg := strings.ToLower(err.Error())
	for _, p := range failurePhrases {
		if strings.Contains(msg, p.phrase) {
			return p.kind
		}
	}
	return failureUnknown
}

func (k failureKind) transient() bool {
	return k == failureUnavailable || k == failureTimeout
}

func (k failureKind) standardError(operation string, attempts int, err error) error {
	summary := fmt.Sprintf("zeebe %s failed", operation)
	if attempts > 1 {
		summary += fmt.Sprintf(" after %d attempts", attempts)
	}
	detail := fmt.Sprintf("%s: %s", summary, err.Error())

	switch k {
	case failureTimeout:
		return commonerrors.NewTimeoutError("zeebe", fmt.Errorf("%s", detail))
	case failureNotFound:
		return commonerrors.NewResourceNotFoundError("zeebe", detail)
	case failureConflict:
		return commonerrors.NewBusinessRuleError(summary, detail)
	case failureDenied:
		return commonerrors.NewAuthenticationError(detail)
	default:
		return commonerrors.NewExternalServiceError("zeebe", fmt.Errorf("%s", detail))
	}
}
