// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"formquali-workers/internal/common/config"
	"formquali-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobWorkerFactory is the part of zbc.Client needed to open job workers.
type JobWorkerFactory interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

// Workers tracks the job workers opened by a process so they can be closed
// together on shutdown.
type Workers struct {
	factory JobWorkerFactory
	logger  logger.Logger
	open    map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{factory: client, logger: log, open: make(map[string]worker.JobWorker)}
}

// Start opens a job worker for taskType unless it is disabled in wcfg. It
// reports whether the worker was started.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}
	builder := w.factory.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(maxJobs)
	if wcfg.Timeout > 0 {
		builder = builder.Timeout(time.Duration(wcfg.Timeout) * time.Millisecond)
	}
	w.open[taskType] = builder.Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobs,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

func (w *Workers) Count() int {
	return len(w.open)
}

// Close stops every worker and waits for in-flight jobs until ctx expires.
func (w *Workers) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		for taskType, jw := range w.open {
			jw.Close()
			jw.AwaitClose()
			w.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("worker shutdown timed out", map[string]interface{}{"workers": len(w.open)})
	}
}
