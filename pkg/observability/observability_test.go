package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "authorization=Bearer abc", want: map[string]string{"authorization": "Bearer abc"}},
		{name: "multiple", in: "a=1,b=2", want: map[string]string{"a": "1", "b": "2"}},
		{name: "spaces", in: " a=1 , b=2 ", want: map[string]string{"a": "1", "b": "2"}},
		{name: "missing value", in: "a", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, ParseOTLPHeaders(tc.in))
		})
	}
}

func TestInitWithoutEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := Init(DefaultConfig())
	require.NoError(t, err)

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	HealthHandler().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestReadyHandlerAllPass(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	check := func(_ context.Context) error { return nil }

	ReadyHandler(check).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestReadyHandlerFailingCheck(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	check := func(_ context.Context) error { return errors.New("subsystem down") }

	ReadyHandler(check).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, recorder.Body.String())
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	t.Parallel()

	tracer := tracenoop.NewTracerProvider().Tracer("test")

	inner := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusTeapot)

		_, _ = rw.Write([]byte("short and stout"))
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)

	HTTPMiddleware(tracer, inner).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusTeapot, recorder.Code)
	assert.Equal(t, "short and stout", recorder.Body.String())
}

func TestREDMetricsWithNoopMeter(t *testing.T) {
	t.Parallel()

	meter := metricnoop.NewMeterProvider().Meter("test")

	red, err := NewREDMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()

	dec := red.TrackInflight(ctx, "analyze")
	red.RecordRequest(ctx, "analyze", StatusOK, 10*time.Millisecond)
	red.RecordRequest(ctx, "analyze", StatusError, time.Second)
	dec()
}

func TestPrometheusHandlerServesMetrics(t *testing.T) {
	t.Parallel()

	handler, provider, err := PrometheusHandler()
	require.NoError(t, err)
	require.NotNil(t, provider)

	red, err := NewREDMetrics(provider.Meter("test"))
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "analyze", StatusOK, 5*time.Millisecond)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "cognitcode_requests_total")
}

func TestTracingHandlerAddsServiceAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(NewTracingHandler(base, "cognitcode", "prod", ModeServe))

	logger.Info("hello")

	var entry map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "cognitcode", entry["service"])
	assert.Equal(t, "prod", entry["env"])
	assert.Equal(t, string(ModeServe), entry["mode"])
}
