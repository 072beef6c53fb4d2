// internal/workers/ticket/lookup-ticket/handler.go
package lookupticket

import (
	"context"
	"encoding/json"
	"strings"
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
	TaskType = "lookup-ticket"
)

type TicketFinder interface {
	Find(ctx context.Context, ticketNumber string) (*models.TicketLookup, error)
}

type Handler struct {
	config *Config
	finder TicketFinder
	logger logger.Logger
	errors *commonerrors.ErrorHandler
}

func NewHandler(config *Config, finder TicketFinder, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		finder: finder,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ticketNumber := strings.TrimSpace(input.TicketNumber)
	if ticketNumber == "" {
		return nil, commonerrors.NewTicketNumberRequiredError()
	}

	lookup, err := h.finder.Find(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	output := &Output{
		TicketNumber: lookup.TicketNumber,
		TicketLink:   lookup.TicketLink,
		Ticket:       lookup.Ticket,
		Cached:       lookup.Cached,
	}
	if lookup.Ticket != nil {
		store := evaluation.NewStore()
		if err := store.SetGeneralInfo(evaluation.FieldTicketNumber, ticketNumber); err != nil {
			return nil, err
		}
		store.ApplyTicketPrefill(*lookup.Ticket, lookup.TicketLink)
		output.GeneralInfo = store.Snapshot().GeneralInfo
	}

	h.logger.Info("ticket resolved", map[string]interface{}{
		"ticketNumber": ticketNumber,
		"cached":       lookup.Cached,
	})
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
	}
}
