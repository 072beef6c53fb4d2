// internal/workers/evaluation/notify-evaluation-result/handler.go
package notifyevaluationresult

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation/notify"
	"formquali-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-evaluation-result"
)

type Sender interface {
	Send(ctx context.Context, result models.EvaluationResult) *models.NotificationReport
}

// RecordReader loads the stored evaluation so the message can list the
// failed critical criteria.
type RecordReader interface {
	Get(ctx context.Context, id string) (*models.Monitoria, error)
}

type Handler struct {
	config  *Config
	sender  Sender
	records RecordReader
	logger  logger.Logger
	errors  *commonerrors.ErrorHandler
}

func NewHandler(config *Config, sender Sender, records RecordReader, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		sender:  sender,
		records: records,
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

// Execute announces the result. Channel failures are reported in the
// output; retrying would resend on the channels that did succeed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RecordID == "" && input.TicketNumber == "" {
		return nil, commonerrors.NewInvalidInputError("recordId or ticketNumber is required")
	}

	result := h.resolve(ctx, input)
	report := h.sender.Send(ctx, result)

	output := &Output{
		NotificationID: report.NotificationID,
		Status:         string(report.Status),
		Channels:       len(report.Channels),
		SentAt:         report.SentAt,
	}
	for _, ch := range report.Channels {
		if ch.Status == models.NotificationFailed {
			output.Failed++
		}
	}

	h.logger.Info("evaluation result announced", map[string]interface{}{
		"recordId":     result.RecordID,
		"status":       output.Status,
		"falhaCritica": result.FalhaCritica,
		"channels":     output.Channels,
	})
	return output, nil
}

// resolve prefers the stored record and falls back to the job variables
// when there is no reader or the record cannot be loaded.
func (h *Handler) resolve(ctx context.Context, input *Input) models.EvaluationResult {
	result := models.EvaluationResult{
		RecordID:     input.RecordID,
		TicketNumber: input.TicketNumber,
		TicketLink:   input.TicketLink,
		Casa:         input.Casa,
		Monitor:      input.Monitor,
		Analista:     input.Analista,
	}

	if h.records != nil && input.RecordID != "" {
		record, err := h.records.Get(ctx, input.RecordID)
		if err != nil {
			h.logger.Warn("record lookup failed, using job variables", map[string]interface{}{
				"recordId": input.RecordID,
				"error":    err,
			})
		} else {
			result = notify.ResultFromRecord(record)
		}
	}

	if input.Score != nil {
		result.NotaFinal = input.Score.FinalScore
		result.FalhaCritica = result.FalhaCritica || input.Score.IsCriticalFailure
	}
	result.AnalistaEmail = input.AnalistaEmail
	return result
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
