package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "alumnet-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestStartSpan_EndSpanRecordsError(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "connections.accept")
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(ConnectionTransitions.WithLabelValues(TransitionAccepted))
	ConnectionTransitions.WithLabelValues(TransitionAccepted).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ConnectionTransitions.WithLabelValues(TransitionAccepted)))

	before = testutil.ToFloat64(ModerationDecisions.WithLabelValues("job", DecisionApproved))
	ModerationDecisions.WithLabelValues("job", DecisionApproved).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ModerationDecisions.WithLabelValues("job", DecisionApproved)))
}
