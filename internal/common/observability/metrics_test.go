package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoop_RecordsWithoutPanicking(t *testing.T) {
	o := NewNoop()
	ctx, span := o.StartSpan(context.Background(), "upload")
	o.RecordStep(ctx, "upload", "ok", 10*time.Millisecond)
	o.RecordSubmission(ctx, "accepted", time.Second)
	span.End()
	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestNilObservability(t *testing.T) {
	var o *Observability
	ctx, span := o.StartSpan(context.Background(), "persist")
	assert.NotNil(t, ctx)
	span.End()
	o.RecordSubmission(ctx, "rejected", time.Millisecond)
	assert.NoError(t, o.Shutdown(context.Background()))
}
