// internal/common/observability/jobs.go
package observability

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const jobStatusHandled = "handled"

// Instrument wraps a job handler in a span named after taskType and
// records the job counter and duration once it returns. Outcome metrics
// stay with the handler itself.
func (o *Observability) Instrument(taskType string, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		ctx, span := o.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("job.process_instance_key", job.ProcessInstanceKey),
		)
		defer span.End()

		handler(client, job)

		o.RecordJobProcessed(ctx, taskType, jobStatusHandled)
		o.RecordJobDuration(ctx, taskType, time.Since(start), jobStatusHandled)
	}
}
