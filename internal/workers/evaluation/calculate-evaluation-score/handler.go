// internal/workers/evaluation/calculate-evaluation-score/handler.go
package calculateevaluationscore

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
	TaskType = "calculate-evaluation-score"
)

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

// Execute scores the checklist and NCG answers. Unanswered criteria count
// as applicable and not achieved.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	form, err := evaluation.ParseForm(input.FormData)
	if err != nil {
		return nil, err
	}

	score := evaluation.ScoreForm(form)
	critical := []string{}
	for _, key := range evaluation.NcgKeys {
		item := form.NcgItems[key]
		if item.Occurred != nil && *item.Occurred == evaluation.RatingNaoConforme {
			critical = append(critical, string(key))
		}
	}

	h.logger.Debug("score calculated", map[string]interface{}{
		"finalScore":        score.FinalScore,
		"isCriticalFailure": score.IsCriticalFailure,
	})

	return &Output{
		FinalScore:              score.FinalScore,
		AchievedPoints:          score.AchievedPoints,
		ApplicableCriteriaCount: score.ApplicableCriteriaCount,
		IsCriticalFailure:       score.IsCriticalFailure,
		CriticalFailures:        critical,
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
