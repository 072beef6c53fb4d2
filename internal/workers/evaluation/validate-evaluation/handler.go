// internal/workers/evaluation/validate-evaluation/handler.go
package validateevaluation

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
	TaskType = "validate-evaluation"
)

// Handler checks a submitted form for completeness. An incomplete form
// completes the job with IsValid false so the process can route on it.
type Handler struct {
	config *Config
	logger logger.Logger
	errors *commonerrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: l,
		errors: commonerrors.NewErrorHandler(l),
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

// Execute validates the form in input. A malformed document is an error;
// an incomplete one is reported in the output, or returned as a validation
// error when the input asks for it.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	form, err := evaluation.ParseForm(input.FormData)
	if err != nil {
		return nil, err
	}

	result := evaluation.Validate(form)
	output := &Output{
		IsValid:       result.Valid,
		Message:       result.Message,
		InvalidFields: result.InvalidFields,
		FocusField:    result.FocusField,
		Progress:      evaluation.SectionProgress(form),
	}
	if output.InvalidFields == nil {
		output.InvalidFields = []evaluation.FieldID{}
	}

	h.logger.Info("evaluation validated", map[string]interface{}{
		"ticketNumber":  form.GeneralInfo.TicketNumber,
		"isValid":       output.IsValid,
		"invalidFields": len(output.InvalidFields),
	})
	if !result.Valid && input.FailOnInvalid {
		fields := make([]string, len(output.InvalidFields))
		for i, id := range output.InvalidFields {
			fields[i] = string(id)
		}
		return nil, commonerrors.NewEvaluationValidationError(result.Message, fields)
	}
	return output, nil
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
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}
