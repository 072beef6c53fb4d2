// internal/workers/evaluation/create-evaluation-record/handler.go
package createevaluationrecord

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-evaluation-record"
)

type RecordStore interface {
	Save(ctx context.Context, record *models.Monitoria) (string, error)
}

type Indexer interface {
	Put(ctx context.Context, record *models.Monitoria) error
}

type Handler struct {
	config  *Config
	store   RecordStore
	indexer Indexer
	logger  logger.Logger
	errors  *commonerrors.ErrorHandler
	now     func() time.Time
}

// NewHandler wires the record store. indexer may be nil when search is not
// configured.
func NewHandler(config *Config, store RecordStore, indexer Indexer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		store:   store,
		indexer: indexer,
		logger:  l,
		errors:  commonerrors.NewErrorHandler(l),
		now:     time.Now,
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

// Execute persists the evaluation. Indexing for search is best effort and
// never fails the job once the row is written.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	form, err := evaluation.ParseForm(input.FormData)
	if err != nil {
		return nil, err
	}

	score := evaluation.ScoreForm(form)
	if input.Score != nil {
		score = *input.Score
	}

	record := evaluation.BuildRecord(form, score)
	record.CreatedAt = h.now().UTC()

	id, err := h.store.Save(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	indexed := false
	if h.indexer != nil {
		if err := h.indexer.Put(ctx, record); err != nil {
			h.logger.Warn("record not indexed", map[string]interface{}{
				"recordId": id,
				"error":    err,
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("evaluation record created", map[string]interface{}{
		"recordId":     id,
		"ticketNumber": record.TicketNumber,
		"notaFinal":    record.NotaFinal,
	})

	return &Output{
		RecordID:          id,
		NotaFinal:         record.NotaFinal,
		IsCriticalFailure: score.IsCriticalFailure,
		Indexed:           indexed,
		CreatedAt:         record.CreatedAt.Format(time.RFC3339),
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
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}
