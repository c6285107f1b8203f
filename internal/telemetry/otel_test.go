package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledInstallsPropagatorOnly(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, ServiceName: "test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.ElementsMatch(t,
		[]string{"traceparent", "tracestate", "baggage"},
		otel.GetTextMapPropagator().Fields(),
	)
	assert.NoError(t, shutdown(context.Background()))
}
