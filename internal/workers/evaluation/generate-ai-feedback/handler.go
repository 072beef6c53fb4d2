// internal/workers/evaluation/generate-ai-feedback/handler.go
package generateaifeedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/gemini"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/metrics"
	"formquali-workers/internal/evaluation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-ai-feedback"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStructured(ctx context.Context, prompt string) (*gemini.StructuredFeedback, error)
}

type Handler struct {
	config    *Config
	generator Generator
	logger    logger.Logger
	errors    *commonerrors.ErrorHandler
}

func NewHandler(config *Config, generator Generator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		generator: generator,
		logger:    l,
		errors:    commonerrors.NewErrorHandler(l),
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	switch input.Mode {
	case "", ModeCoaching:
		return h.coaching(ctx, input)
	case ModeStructured:
		return h.structured(ctx, input)
	default:
		return nil, commonerrors.NewInvalidInputError(fmt.Sprintf("unknown mode %q", input.Mode))
	}
}

// coaching asks for a feedback paragraph about the justified failures. With
// nothing to discuss the model is not called.
func (h *Handler) coaching(ctx context.Context, input *Input) (*Output, error) {
	form, err := evaluation.ParseForm(input.FormData)
	if err != nil {
		return nil, err
	}

	prompt, ok := evaluation.CoachingPrompt(form)
	if !ok {
		return &Output{Mode: ModeCoaching, Feedback: evaluation.MsgNoImprovementPoints}, nil
	}

	text, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		h.logger.Error("coaching feedback failed", map[string]interface{}{
			"ticketNumber": form.GeneralInfo.TicketNumber,
			"error":        err,
		})
		return nil, err
	}
	return &Output{Mode: ModeCoaching, Generated: true, Feedback: text}, nil
}

func (h *Handler) structured(ctx context.Context, input *Input) (*Output, error) {
	text := input.QuestionAnswerText
	if text == "" {
		form, err := evaluation.ParseForm(input.FormData)
		if err != nil {
			return nil, err
		}
		text = evaluation.QuestionAnswerText(form)
	}

	fb, err := h.generator.GenerateStructured(ctx, evaluation.StructuredPrompt(text))
	if err != nil {
		return nil, err
	}
	return &Output{
		Mode:        ModeStructured,
		Generated:   true,
		AvaliacaoIA: fb.AvaliacaoIA,
		SugestaoIA:  fb.SugestaoIA,
		Answers:     fb.Answers,
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
