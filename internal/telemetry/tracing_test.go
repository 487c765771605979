package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/vapeshop/catalog-server/internal/config"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_RejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	_, err := InitTracing(ctx, config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 1.5}, "test")
	require.Error(t, err)

	_, err = InitTracing(ctx, config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1}, "test")
	require.ErrorContains(t, err, "unsupported exporter")

	_, err = InitTracing(ctx, config.TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1}, "test")
	require.ErrorContains(t, err, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func TestInitTracing_StdoutExportsSpans(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	cfg := config.TracingConfig{Enabled: true, Exporter: "stdout", ServiceName: "vapeshop-catalog", SampleRate: 1}
	shutdown, err := initTracing(context.Background(), cfg, "1.2.3", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "list liquids")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "list liquids")
	require.Contains(t, buf.String(), "vapeshop-catalog")
}
