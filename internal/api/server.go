// Package api serves the evaluation backend over HTTP alongside the health
// and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation/drafts"
	"formquali-workers/internal/evaluation/records"
	"formquali-workers/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*models.Evaluator, error)
}

type SessionManager interface {
	Create(ctx context.Context, ev models.Evaluator) (*models.EvaluatorSession, error)
	Get(ctx context.Context, email, sessionID string) (*models.EvaluatorSession, error)
	Delete(ctx context.Context, email, sessionID string) (int, error)
}

type TicketFinder interface {
	Find(ctx context.Context, ticketNumber string) (*models.TicketLookup, error)
}

type WebhookForwarder interface {
	Forward(ctx context.Context, body interface{}) (json.RawMessage, error)
}

type DraftRegistry interface {
	Open(ctx context.Context, evaluator string) (*drafts.Session, error)
	Close(ctx context.Context, evaluator string, discard bool) error
}

type EvaluationSearcher interface {
	SearchWithSource(ctx context.Context, filter records.Filter) (*models.MonitoriaSearchResult, string, error)
}

type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// ReadinessCheck is one dependency probed by /ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies wires the collaborators. Routes whose collaborator is nil
// answer 503; every form route also needs Sessions.
type Dependencies struct {
	Credentials CredentialVerifier
	Sessions    SessionManager
	Tickets     TicketFinder
	Webhook     WebhookForwarder
	Feedback    FeedbackGenerator
	Drafts      DraftRegistry
	Search      EvaluationSearcher
	Readiness   []ReadinessCheck
	Tracer      Tracer
}

type Server struct {
	deps          Dependencies
	allowedOrigin string
	logger        logger.Logger
	mux           *http.ServeMux
}

func NewServer(deps Dependencies, allowedOrigin string, log logger.Logger) *Server {
	s := &Server{
		deps:          deps,
		allowedOrigin: allowedOrigin,
		logger:        log.WithFields(map[string]interface{}{"component": "api"}),
		mux:           http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /api/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/logout", s.handleLogout)
	s.mux.HandleFunc("POST /api/ticket", s.requireSession(s.handleTicket))
	s.mux.HandleFunc("POST /api/send-webhook", s.requireSession(s.handleSendWebhook))
	s.mux.HandleFunc("POST /api/avaliacao-ia", s.requireSession(s.handleAIFeedback))

	s.mux.HandleFunc("GET /api/drafts/{evaluator}", s.requireSession(s.handleGetDraft))
	s.mux.HandleFunc("PUT /api/drafts/{evaluator}", s.requireSession(s.handlePutDraft))
	s.mux.HandleFunc("DELETE /api/drafts/{evaluator}", s.requireSession(s.handleDeleteDraft))
	s.mux.HandleFunc("PATCH /api/drafts/{evaluator}/fields", s.requireSession(s.handlePatchFields))
	s.mux.HandleFunc("POST /api/drafts/{evaluator}/ticket", s.requireSession(s.handleDraftTicket))
	s.mux.HandleFunc("POST /api/drafts/{evaluator}/submit", s.requireSession(s.handleSubmitDraft))
	s.mux.HandleFunc("GET /api/drafts/{evaluator}/progress", s.requireSession(s.handleDraftProgress))

	s.mux.HandleFunc("GET /api/evaluations", s.requireSession(s.handleSearch))
}

// Handler returns the routes wrapped with CORS and tracing.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.withTracing(s.mux))
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderSessionID+", "+HeaderEvaluator)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withTracing(next http.Handler) http.Handler {
	if s.deps.Tracer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := s.mux.Handler(r)
		if pattern == "" {
			pattern = r.Method + " unmatched"
		}
		ctx, span := s.deps.Tracer.StartSpan(r.Context(), pattern,
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", rec.status))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
