// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"formquali-workers/internal/api"
	"formquali-workers/internal/common/auth"
	"formquali-workers/internal/common/camunda"
	"formquali-workers/internal/common/config"
	"formquali-workers/internal/common/database"
	"formquali-workers/internal/common/gemini"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/common/observability"
	"formquali-workers/internal/common/webhook"
	"formquali-workers/internal/common/zendesk"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/evaluation/drafts"
	"formquali-workers/internal/evaluation/notify"
	"formquali-workers/internal/evaluation/records"
	"formquali-workers/internal/evaluation/submission"
)

// submittedMessageTTL bounds how long an unmatched evaluation-submitted
// message waits for a process instance.
const submittedMessageTTL = time.Hour

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("notificationMode", cfg.Notifications.Mode),
	)

	ctx := context.Background()

	// --- Observability ---
	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, log)
	defer obs.Shutdown()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	if err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		return err
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection"); err != nil {
		zapLog.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("failed to prepare database schema", zap.Error(err))
	}

	// --- Redis ---
	var cache *database.RedisClient
	if err := retryWithBackoff(func() error {
		var err error
		cache, err = database.NewRedis(cfg.Database.Redis)
		return err
	}, 5, 2*time.Second, zapLog, "Redis connection"); err != nil {
		zapLog.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()
	sessionRedis := database.NewSessionRedis(cfg.Database.Redis)
	defer sessionRedis.Close()

	// --- Elasticsearch (optional) ---
	var (
		index    *records.Index
		esClient *database.ElasticsearchClient
	)
	if cfg.Database.Elasticsearch.Enabled() {
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("Elasticsearch unavailable, search falls back to PostgreSQL", zap.Error(err))
		} else {
			if err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index, database.MonitoriasMapping); err != nil {
				zapLog.Warn("failed to ensure search index", zap.Error(err))
			}
			index = records.NewIndex(esClient.Client, cfg.Database.Elasticsearch.Index)
		}
	}

	// --- Zeebe ---
	var camundaClient *camunda.Client
	if err := retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 5, 2*time.Second, zapLog, "Zeebe connection"); err != nil {
		zapLog.Fatal("failed to connect to Zeebe", zap.Error(err))
	}
	defer camundaClient.Close()

	// --- Stores and integrations ---
	recordStore := records.NewPostgresStore(pg.GetDB(), log)
	var indexSearcher records.Searcher
	if index != nil {
		indexSearcher = index
	}
	searcher := records.NewFallbackSearcher(indexSearcher, recordStore, log)

	credentials := auth.NewCredentialStore(pg.GetDB(), log)
	sessions := auth.NewSessionStore(sessionRedis, time.Duration(cfg.Session.TTL)*time.Second)

	zd := cfg.Integrations.Zendesk
	ticketLookup := zendesk.NewLookup(
		zendesk.NewClient(zd.APIBaseURL(), zd.Subdomain, zd.Email, zd.APIToken, config.GetDuration(zd.Timeout), log),
		cache,
		time.Duration(zd.CacheTTL)*time.Second,
		log,
	)

	relay := webhook.NewRelay(cfg.Integrations.Webhook.URL, config.GetDuration(cfg.Integrations.Webhook.Timeout), log)

	gm := cfg.Integrations.Gemini
	geminiClient := gemini.NewClient(gm.BaseURL, gm.APIKey, gm.Model, config.GetDuration(gm.Timeout))
	if !geminiClient.Configured() {
		zapLog.Warn("Gemini API key not set, AI feedback requests will fail")
	}

	notifier := notify.New(log, notifierOptions(ctx, cfg, ticketLookup, zapLog)...)

	// --- Submission wiring ---
	submitOpts := []submission.Option{submission.WithScoreRecorder(obs)}
	if relay.Configured() {
		submitOpts = append(submitOpts, submission.WithNotifier(relay))
	}
	if index != nil {
		submitOpts = append(submitOpts, submission.WithObservers(index))
	}
	if cfg.Notifications.Inline() {
		submitOpts = append(submitOpts, submission.WithObservers(notifier))
	} else {
		submitOpts = append(submitOpts, submission.WithObservers(
			submission.NewProcessTrigger(camundaClient, submittedMessageTTL),
		))
	}

	draftRegistry := drafts.NewRegistry(
		drafts.NewPersister(cache.GetClient(), cfg.Drafts.KeyPrefix, time.Duration(cfg.Drafts.TTL)*time.Second, log),
		func(store *evaluation.Store) *submission.Orchestrator {
			return submission.New(store, recordStore, log, submitOpts...)
		},
		log,
	)

	// --- Workers ---
	workers := camunda.NewWorkers(camundaClient.GetClient(), log)
	startWorkers(workers, obs, cfg, workerDeps{
		log:         log,
		records:     recordStore,
		index:       index,
		searcher:    searcher,
		credentials: credentials,
		sessions:    sessions,
		tickets:     ticketLookup,
		relay:       relay,
		gemini:      geminiClient,
		notifier:    notifier,
		submitOpts:  submitOpts,
	})
	zapLog.Info("Workers registered", zap.Int("count", workers.Count()))

	// --- HTTP API, Health & Metrics Server ---
	readiness := []api.ReadinessCheck{
		{Name: "postgres", Check: pg.Ping},
		{Name: "redis", Check: cache.Ping},
		{Name: "zeebe", Check: camundaClient.HealthCheck},
	}
	if esClient != nil {
		readiness = append(readiness, api.ReadinessCheck{
			Name:  "elasticsearch",
			Check: func(context.Context) error { return esClient.Ping() },
		})
	}

	apiDeps := api.Dependencies{
		Credentials: credentials,
		Sessions:    sessions,
		Tickets:     ticketLookup,
		Feedback:    geminiClient,
		Drafts:      draftRegistry,
		Search:      searcher,
		Readiness:   readiness,
		Tracer:      obs,
	}
	if relay.Configured() {
		apiDeps.Webhook = relay
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewServer(apiDeps, cfg.Server.AllowedOrigin, log).Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	workers.Close(shutdownCtx)

	zapLog.Info("Worker manager stopped gracefully")
}
