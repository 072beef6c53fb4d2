// cmd/worker-manager/workers.go
package main

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"formquali-workers/internal/common/auth"
	awsclients "formquali-workers/internal/common/aws"
	"formquali-workers/internal/common/camunda"
	"formquali-workers/internal/common/config"
	"formquali-workers/internal/common/discord"
	"formquali-workers/internal/common/gemini"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/observability"
	"formquali-workers/internal/common/webhook"
	"formquali-workers/internal/common/zendesk"
	"formquali-workers/internal/evaluation/notify"
	"formquali-workers/internal/evaluation/records"
	"formquali-workers/internal/evaluation/submission"

	// Evaluation Workers (7)
	ces "formquali-workers/internal/workers/evaluation/calculate-evaluation-score"
	cer "formquali-workers/internal/workers/evaluation/create-evaluation-record"
	gaf "formquali-workers/internal/workers/evaluation/generate-ai-feedback"
	ner "formquali-workers/internal/workers/evaluation/notify-evaluation-result"
	sew "formquali-workers/internal/workers/evaluation/send-evaluation-webhook"
	sev "formquali-workers/internal/workers/evaluation/submit-evaluation"
	vev "formquali-workers/internal/workers/evaluation/validate-evaluation"

	// Ticket and Data Access Workers (2)
	se "formquali-workers/internal/workers/data-access/search-evaluations"
	lt "formquali-workers/internal/workers/ticket/lookup-ticket"

	// Authentication Workers (2)
	ees "formquali-workers/internal/workers/auth/end-evaluator-session"
	vec "formquali-workers/internal/workers/auth/verify-evaluator-credentials"
)

type workerDeps struct {
	log         logger.Logger
	records     *records.PostgresStore
	index       *records.Index
	searcher    *records.FallbackSearcher
	credentials *auth.CredentialStore
	sessions    *auth.SessionStore
	tickets     *zendesk.Lookup
	relay       *webhook.Relay
	gemini      *gemini.Client
	notifier    *notify.Notifier
	submitOpts  []submission.Option
}

// startWorkers opens every enabled job worker. Handlers are wrapped with
// tracing before they are registered.
func startWorkers(workers *camunda.Workers, obs *observability.Observability, cfg *config.Config, d workerDeps) {
	log := d.log
	start := func(taskType string, handler worker.JobHandler) {
		workers.Start(taskType, config.GetWorkerConfig(cfg, taskType), obs.Instrument(taskType, handler))
	}

	// Validate Evaluation
	{
		h := vev.NewHandler(vev.LoadConfig(cfg.Workers[vev.TaskType]), log)
		start(vev.TaskType, h.Handle)
	}

	// Calculate Evaluation Score
	{
		h := ces.NewHandler(ces.LoadConfig(cfg.Workers[ces.TaskType]), log)
		start(ces.TaskType, h.Handle)
	}

	// Send Evaluation Webhook
	{
		h := sew.NewHandler(sew.LoadConfig(cfg.Workers[sew.TaskType]), d.relay, log)
		start(sew.TaskType, h.Handle)
	}

	// Create Evaluation Record
	{
		var indexer cer.Indexer
		if d.index != nil {
			indexer = d.index
		}
		h := cer.NewHandler(cer.LoadConfig(cfg.Workers[cer.TaskType]), d.records, indexer, log)
		start(cer.TaskType, h.Handle)
	}

	// Submit Evaluation
	{
		h := sev.NewHandler(sev.LoadConfig(cfg.Workers[sev.TaskType]), d.records, log, d.submitOpts...)
		start(sev.TaskType, h.Handle)
	}

	// Lookup Ticket
	{
		h := lt.NewHandler(lt.LoadConfig(cfg.Workers[lt.TaskType]), d.tickets, log)
		start(lt.TaskType, h.Handle)
	}

	// Search Evaluations
	{
		h := se.NewHandler(se.LoadConfig(cfg.Workers[se.TaskType]), d.searcher, log)
		start(se.TaskType, h.Handle)
	}

	// Generate AI Feedback
	{
		h := gaf.NewHandler(gaf.LoadConfig(cfg.Workers[gaf.TaskType]), d.gemini, log)
		start(gaf.TaskType, h.Handle)
	}

	// Notify Evaluation Result
	{
		h := ner.NewHandler(ner.LoadConfig(cfg.Workers[ner.TaskType]), d.notifier, d.records, log)
		start(ner.TaskType, h.Handle)
	}

	// Verify Evaluator Credentials
	{
		h, err := vec.NewHandler(vec.HandlerOptions{
			AppConfig:   cfg,
			Credentials: d.credentials,
			Sessions:    d.sessions,
			Logger:      log,
		})
		if err != nil {
			log.Error("failed to create handler", map[string]interface{}{"taskType": vec.TaskType, "error": err})
		} else {
			start(vec.TaskType, h.Handle)
		}
	}

	// End Evaluator Session
	{
		h, err := ees.NewHandler(ees.HandlerOptions{
			AppConfig: cfg,
			Sessions:  d.sessions,
			Logger:    log,
		})
		if err != nil {
			log.Error("failed to create handler", map[string]interface{}{"taskType": ees.TaskType, "error": err})
		} else {
			start(ees.TaskType, h.Handle)
		}
	}
}

// notifierOptions enables the result channels switched on in cfg. The
// analyst e-mail comes from the ticket assignee.
func notifierOptions(ctx context.Context, cfg *config.Config, tickets *zendesk.Lookup, log *zap.Logger) []notify.Option {
	opts := []notify.Option{
		notify.WithRecipientResolver(func(ctx context.Context, ticketNumber string) (string, error) {
			lookup, err := tickets.Find(ctx, ticketNumber)
			if err != nil {
				return "", err
			}
			if lookup.Ticket == nil || lookup.Ticket.AssigneeEmail == "" {
				return "", errors.New("ticket has no assignee e-mail")
			}
			return lookup.Ticket.AssigneeEmail, nil
		}),
	}

	aws := cfg.Integrations.AWS
	if (cfg.Notifications.Email.Enabled && aws.SES.Enabled) || (cfg.Notifications.CriticalAlerts.Enabled && aws.SNS.Enabled) {
		awsCfg, err := awsclients.LoadConfig(ctx, aws.Region)
		if err != nil {
			log.Warn("AWS config unavailable, e-mail and SNS alerts disabled", zap.Error(err))
		} else {
			if cfg.Notifications.Email.Enabled && aws.SES.Enabled {
				opts = append(opts, notify.WithEmail(awsclients.NewSESClient(awsCfg, aws.SES.FromEmail), cfg.Notifications.Email.Subject))
			}
			if cfg.Notifications.CriticalAlerts.Enabled && aws.SNS.Enabled {
				opts = append(opts, notify.WithAlerts(awsclients.NewSNSClient(awsCfg, aws.SNS.TopicARN)))
			}
		}
	}

	dc := cfg.Integrations.Discord
	if cfg.Notifications.CriticalAlerts.Enabled && dc.Enabled {
		client, err := discord.NewClient(dc.BotToken, dc.ChannelID)
		if err != nil {
			log.Warn("Discord client unavailable", zap.Error(err))
		} else {
			opts = append(opts, notify.WithChannel(client))
		}
	}

	return opts
}
