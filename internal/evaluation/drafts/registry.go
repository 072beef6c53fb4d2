// internal/evaluation/drafts/registry.go
package drafts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/evaluation/submission"
)

var ErrEvaluatorRequired = errors.New("EVALUATOR_REQUIRED")

// Session is one evaluator's form and its submission state.
type Session struct {
	Evaluator  string
	Store      *evaluation.Store
	Submission *submission.Orchestrator

	mirror *mirror
}

// OrchestratorFactory builds the submission orchestrator for a new session.
type OrchestratorFactory func(store *evaluation.Store) *submission.Orchestrator

// Registry holds the open sessions. Each session's store is mirrored to
// Redis after every accepted change.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	persister   *Persister
	factory     OrchestratorFactory
	saveTimeout time.Duration
	logger      logger.Logger
}

func NewRegistry(persister *Persister, factory OrchestratorFactory, log logger.Logger) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		persister:   persister,
		factory:     factory,
		saveTimeout: 3 * time.Second,
		logger:      log,
	}
}

// Open returns the evaluator's session, restoring the saved draft the first
// time it is opened.
func (r *Registry) Open(ctx context.Context, evaluator string) (*Session, error) {
	evaluator = strings.TrimSpace(evaluator)
	if evaluator == "" {
		return nil, ErrEvaluatorRequired
	}

	r.mu.Lock()
	if sess, ok := r.sessions[evaluator]; ok {
		r.mu.Unlock()
		return sess, nil
	}
	r.mu.Unlock()

	form, found, err := r.persister.Load(ctx, evaluator)
	if err != nil {
		r.logger.Warn("draft not restored", map[string]interface{}{
			"evaluator": evaluator,
			"error":     err,
		})
	}

	store := evaluation.NewStore()
	if found {
		store.Load(form)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[evaluator]; ok {
		return sess, nil
	}
	m := &mirror{
		evaluator: evaluator,
		last:      store.Version(),
		persister: r.persister,
		timeout:   r.saveTimeout,
		logger:    r.logger,
	}
	store.Subscribe(m.save)
	sess := &Session{
		Evaluator:  evaluator,
		Store:      store,
		Submission: r.factory(store),
		mirror:     m,
	}
	r.sessions[evaluator] = sess

	r.logger.Info("evaluation session opened", map[string]interface{}{
		"evaluator":     evaluator,
		"draftRestored": found,
	})
	return sess, nil
}

// Close forgets the session. The saved draft is kept unless discard is set;
// a discarded session stops mirroring before its draft is deleted.
func (r *Registry) Close(ctx context.Context, evaluator string, discard bool) error {
	evaluator = strings.TrimSpace(evaluator)
	r.mu.Lock()
	sess, ok := r.sessions[evaluator]
	delete(r.sessions, evaluator)
	r.mu.Unlock()

	if !discard {
		return nil
	}
	if ok {
		sess.mirror.detach()
	}
	return r.persister.Delete(ctx, evaluator)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// mirror copies a session's store to Redis. Saves run one at a time and a
// snapshot older than the last one handled is dropped, so the stored draft
// never goes back to an earlier version.
type mirror struct {
	mu        sync.Mutex
	evaluator string
	last      uint64
	detached  bool
	persister *Persister
	timeout   time.Duration
	logger    logger.Logger
}

func (m *mirror) save(version uint64, form evaluation.FormData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached || version <= m.last {
		return
	}
	m.last = version

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.persister.Save(ctx, m.evaluator, form); err != nil {
		m.logger.Warn("draft not saved", map[string]interface{}{
			"evaluator": m.evaluator,
			"version":   version,
			"error":     err,
		})
	}
}

// detach waits for a save in flight and turns later saves into no-ops.
func (m *mirror) detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detached = true
}
