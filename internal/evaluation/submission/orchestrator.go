// Package submission drives one evaluation from the answer store through
// validation, scoring and persistence.
package submission

import (
	"context"
	"sync"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateScoring    State = "scoring"
	StatePersisting State = "persisting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Busy reports whether a submission is running in this state.
func (s State) Busy() bool {
	return s == StateValidating || s == StateScoring || s == StatePersisting
}

type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureValidation  FailureKind = "validation"
	FailurePersistence FailureKind = "persistence"
)

// Notifier relays the webhook payload. Failures never fail a submission.
type Notifier interface {
	Notify(ctx context.Context, payload map[string]interface{}) error
}

// RecordStore persists one submitted evaluation and returns its id.
type RecordStore interface {
	Save(ctx context.Context, record *models.Monitoria) (string, error)
}

// Observer runs after a record is saved. Errors are logged and ignored.
type Observer interface {
	Name() string
	OnSubmitted(ctx context.Context, record *models.Monitoria, score evaluation.ScoreResult) error
}

// ScoreRecorder receives the score of every persisted evaluation.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, score float64, criticalFailure bool)
}

// Outcome is the result of the most recent submission.
type Outcome struct {
	State                 State                   `json:"state"`
	Failure               FailureKind             `json:"failure,omitempty"`
	Message               string                  `json:"message"`
	InvalidFields         []evaluation.FieldID    `json:"invalidFields,omitempty"`
	FocusField            evaluation.FieldID      `json:"focusField,omitempty"`
	Score                 *evaluation.ScoreResult `json:"score,omitempty"`
	RecordID              string                  `json:"recordId,omitempty"`
	NotificationDelivered bool                    `json:"notificationDelivered"`
	SubmittedAt           time.Time               `json:"submittedAt"`
}

type Orchestrator struct {
	mu    sync.Mutex
	state State
	last  *Outcome

	store     *evaluation.Store
	records   RecordStore
	notifier  Notifier
	observers []Observer
	scores    ScoreRecorder
	logger    logger.Logger
	now       func() time.Time
}

type Option func(*Orchestrator)

// WithNotifier sets the webhook relay. Without one the relay step is skipped.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithObservers(obs ...Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, obs...) }
}

func WithScoreRecorder(r ScoreRecorder) Option {
	return func(o *Orchestrator) { o.scores = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(store *evaluation.Store, records RecordStore, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		state:   StateIdle,
		store:   store,
		records: records,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastOutcome returns a copy of the last finished submission, or nil.
func (o *Orchestrator) LastOutcome() *Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return nil
	}
	out := *o.last
	return &out
}

// Submit validates, scores and persists the current store contents. It
// returns a SUBMISSION_IN_PROGRESS error without side effects while another
// submission is running. Validation and persistence failures are reported
// through the Outcome, not the error.
func (o *Orchestrator) Submit(ctx context.Context) (*Outcome, error) {
	o.mu.Lock()
	if o.state.Busy() {
		o.mu.Unlock()
		return nil, commonerrors.NewSubmissionInProgressError()
	}
	o.state = StateValidating
	o.mu.Unlock()

	form := o.store.Snapshot()
	outcome := &Outcome{SubmittedAt: o.now().UTC()}

	result := evaluation.Validate(form)
	o.store.SetInvalidFields(result.InvalidFields)
	if !result.Valid {
		outcome.Failure = FailureValidation
		outcome.Message = result.Message
		outcome.InvalidFields = result.InvalidFields
		outcome.FocusField = result.FocusField
		o.logger.Info("evaluation rejected by validation", map[string]interface{}{
			"ticketNumber":  form.GeneralInfo.TicketNumber,
			"invalidFields": len(result.InvalidFields),
		})
		return o.finish(outcome, StateFailed), nil
	}

	o.setState(StateScoring)
	score := evaluation.ScoreForm(form)
	outcome.Score = &score

	o.setState(StatePersisting)
	outcome.NotificationDelivered = o.notify(ctx, form, score, outcome.SubmittedAt)

	record := evaluation.BuildRecord(form, score)
	record.CreatedAt = outcome.SubmittedAt
	id, err := o.records.Save(ctx, record)
	if err != nil {
		outcome.Failure = FailurePersistence
		outcome.Message = evaluation.MsgSubmitFailurePrefix + evaluation.MsgPersistFailure + persistCause(err)
		o.logger.Error("evaluation record not saved", map[string]interface{}{
			"ticketNumber": form.GeneralInfo.TicketNumber,
			"error":        err,
		})
		return o.finish(outcome, StateFailed), nil
	}
	record.ID = id
	outcome.RecordID = id
	outcome.Message = evaluation.MsgSubmitSuccess

	metrics.EvaluationFinalScore.Observe(score.FinalScore)
	if score.IsCriticalFailure {
		metrics.EvaluationCriticalFailures.Inc()
	}
	if o.scores != nil {
		o.scores.RecordScore(ctx, score.FinalScore, score.IsCriticalFailure)
	}

	for _, obs := range o.observers {
		if err := obs.OnSubmitted(ctx, record, score); err != nil {
			o.logger.Warn("post-submission hook failed", map[string]interface{}{
				"hook":     obs.Name(),
				"recordId": id,
				"error":    err,
			})
		}
	}

	o.logger.Info("evaluation submitted", map[string]interface{}{
		"recordId":        id,
		"ticketNumber":    form.GeneralInfo.TicketNumber,
		"finalScore":      score.FinalScore,
		"criticalFailure": score.IsCriticalFailure,
	})
	return o.finish(outcome, StateSucceeded), nil
}

func (o *Orchestrator) notify(ctx context.Context, form evaluation.FormData, score evaluation.ScoreResult, at time.Time) bool {
	if o.notifier == nil {
		return false
	}
	payload := evaluation.BuildWebhookPayload(form, score, at)
	if err := o.notifier.Notify(ctx, payload); err != nil {
		o.logger.Warn("webhook relay failed", map[string]interface{}{
			"ticketNumber": form.GeneralInfo.TicketNumber,
			"error":        err,
		})
		return false
	}
	return true
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) finish(outcome *Outcome, s State) *Outcome {
	outcome.State = s
	metrics.EvaluationSubmissions.WithLabelValues(string(s), string(outcome.Failure)).Inc()

	o.mu.Lock()
	o.state = s
	kept := *outcome
	o.last = &kept
	o.mu.Unlock()
	return outcome
}

// persistCause prefers the user-facing message of a StandardError.
func persistCause(err error) string {
	if stdErr, ok := commonerrors.AsStandardError(err); ok {
		if stdErr.Details != "" {
			return stdErr.Details
		}
		return stdErr.Message
	}
	return err.Error()
}
