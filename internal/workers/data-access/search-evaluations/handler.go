// internal/workers/data-access/search-evaluations/handler.go
package searchevaluations

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation/records"
	"formquali-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-evaluations"
)

type SourceSearcher interface {
	SearchWithSource(ctx context.Context, filter records.Filter) (*models.MonitoriaSearchResult, string, error)
}

type Handler struct {
	config   *Config
	searcher SourceSearcher
	logger   logger.Logger
	errors   *commonerrors.ErrorHandler
}

func NewHandler(config *Config, searcher SourceSearcher, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		searcher: searcher,
		logger:   l,
		errors:   commonerrors.NewErrorHandler(l),
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
		stdErr := commonerrors.NewInvalidFilterFormatError(err.Error())
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, source, err := h.searcher.SearchWithSource(ctx, input.Filter)
	if err != nil {
		return nil, err
	}

	h.logger.Info("evaluations searched", map[string]interface{}{
		"total":  result.Total,
		"source": source,
	})

	results := result.Results
	if results == nil {
		results = []*models.Monitoria{}
	}
	return &Output{
		Total:   result.Total,
		Page:    result.Page,
		Size:    result.Size,
		Results: results,
		Source:  source,
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
