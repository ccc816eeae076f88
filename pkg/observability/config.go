// Package observability wires OpenTelemetry tracing, metrics, and structured
// logging behind a single Init call, with no-op providers when no collector
// endpoint is configured.
package observability

import "log/slog"

// AppMode describes how the binary is running, attached to telemetry as the
// app.mode resource attribute.
type AppMode string

// Application modes.
const (
	ModeCLI   AppMode = "cli"
	ModeMCP   AppMode = "mcp"
	ModeServe AppMode = "serve"
)

const (
	defaultServiceName        = "cognitcode"
	defaultShutdownTimeoutSec = 5
)

// Config holds observability initialization settings.
type Config struct {
	// ServiceName identifies the service in telemetry. Defaults to "cognitcode".
	ServiceName string

	// ServiceVersion is attached to the telemetry resource when set.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "prod"), optional.
	Environment string

	// Mode describes how the binary is running.
	Mode AppMode

	// OTLPEndpoint is the collector gRPC endpoint. Empty disables export;
	// tracing and metrics become no-ops.
	OTLPEndpoint string

	// OTLPHeaders are extra headers sent to the collector.
	OTLPHeaders map[string]string

	// OTLPInsecure disables transport security on the collector connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio in (0, 1]. Zero samples everything.
	SampleRatio float64

	// LogLevel is the minimum level for the structured logger.
	LogLevel slog.Level

	// LogJSON switches the logger to JSON output (stdio transports want this
	// so log lines stay machine-parseable on stderr).
	LogJSON bool

	// ShutdownTimeoutSec bounds telemetry flushing on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with production defaults and export disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
