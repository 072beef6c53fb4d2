// internal/workers/evaluation/send-evaluation-webhook/handler.go
package sendevaluationwebhook

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-evaluation-webhook"
)

// Notifier delivers a rendered evaluation payload.
type Notifier interface {
	Notify(ctx context.Context, payload map[string]interface{}) error
}

type Handler struct {
	config   *Config
	notifier Notifier
	logger   logger.Logger
	errors   *commonerrors.ErrorHandler
	now      func() time.Time
}

func NewHandler(config *Config, notifier Notifier, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		notifier: notifier,
		logger:   l,
		errors:   commonerrors.NewErrorHandler(l),
		now:      time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := commonerrors.NewInvalidInputError(err.Error())
		metrics.ObserveJob(TaskType, start, string(stdErr.Code))
		h.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.ObserveJob(TaskType, start, string(commonerrors.Normalize(err).Code))
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, start, "")
}

// Execute renders the evaluation payload and posts it. The score is
// recomputed from the form when the process did not supply one.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	form, err := evaluation.ParseForm(input.FormData)
	if err != nil {
		return nil, err
	}

	score := evaluation.ScoreForm(form)
	if input.Score != nil {
		score = *input.Score
	}

	submittedAt := h.now().UTC()
	if input.SubmittedAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.SubmittedAt)
		if err != nil {
			return nil, commonerrors.NewInvalidInputError("submittedAt: " + err.Error())
		}
		submittedAt = parsed
	}

	payload := evaluation.BuildWebhookPayload(form, score, submittedAt)
	if err := h.notifier.Notify(ctx, payload); err != nil {
		return nil, err
	}

	h.logger.Info("evaluation webhook delivered", map[string]interface{}{
		"ticketNumber": form.GeneralInfo.TicketNumber,
		"finalScore":   score.FinalScore,
	})
	return &Output{
		Delivered: true,
		SentAt:    h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}
