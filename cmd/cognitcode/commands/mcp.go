package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognitcode/cognitcode/internal/config"
	"github.com/cognitcode/cognitcode/pkg/mcp"
	"github.com/cognitcode/cognitcode/pkg/observability"
	"github.com/cognitcode/cognitcode/pkg/refactor"
	"github.com/cognitcode/cognitcode/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes CognitCode capabilities as tools that AI agents
can discover and invoke:
  - cognitcode_analyze: Detect code smells in a Python snippet
  - cognitcode_refactor: Detect smells and refactor the snippet with an LLM`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			providers, err := initMCPObservability(debug)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			deps := mcp.ServerDeps{
				Logger:     providers.Logger,
				Refactorer: newRefactorer(),
				Metrics:    red,
				Tracer:     providers.Tracer,
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}

// newRefactorer builds an LLM client from the environment, or nil when no API
// key is configured. The refactor tool then reports the missing key per call
// instead of failing server startup.
func newRefactorer() *refactor.Client {
	apiKey := config.ResolveAPIKey()
	if apiKey == "" {
		return nil
	}

	client, err := refactor.NewClient(apiKey)
	if err != nil {
		return nil
	}

	return client
}

func initMCPObservability(debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
	}

	return observability.Init(cfg)
}
