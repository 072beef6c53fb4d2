// internal/workers/evaluation/submit-evaluation/handler.go
package submitevaluation

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/evaluation/submission"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "submit-evaluation"
)

// Handler runs a whole submission for a form carried by the job. Each job
// gets its own answer store, so jobs never contend with each other.
type Handler struct {
	config  *Config
	records submission.RecordStore
	options []submission.Option
	logger  logger.Logger
	errors  *commonerrors.ErrorHandler
}

func NewHandler(config *Config, records submission.RecordStore, log logger.Logger, opts ...submission.Option) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		records: records,
		options: opts,
		logger:  l,
		errors:  commonerrors.NewErrorHandler(l),
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

// Execute submits the form. Validation and persistence failures complete
// the job with Success false and the user-facing message.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	form, err := evaluation.ParseForm(input.FormData)
	if err != nil {
		return nil, err
	}

	store := evaluation.NewStore()
	store.Load(form)
	orchestrator := submission.New(store, h.records, h.logger, h.options...)

	outcome, err := orchestrator.Submit(ctx)
	if err != nil {
		return nil, err
	}

	return &Output{
		Success: outcome.State == submission.StateSucceeded,
		Outcome: *outcome,
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
