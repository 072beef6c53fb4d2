// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"testing"

	"formquali-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_CallsHandler(t *testing.T) {
	obs := New("formquali-test", "", logger.NewTestLogger(t))
	t.Cleanup(obs.Shutdown)

	var got int64
	wrapped := obs.Instrument("validate-evaluation", func(client worker.JobClient, job entities.Job) {
		got = job.Key
	})
	wrapped(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, ProcessInstanceKey: 7}})

	assert.Equal(t, int64(42), got)
}

func TestRecorders_WithoutExporter(t *testing.T) {
	obs := &Observability{log: logger.NewNoOpLogger()}
	ctx, span := New("formquali-test", "", logger.NewNoOpLogger()).StartSpan(context.Background(), "noop")
	defer span.End()
	require.NotNil(t, ctx)

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "lookup-ticket", "handled")
		obs.RecordScore(ctx, 80, false)
		obs.Shutdown()
	})
}
