package commands

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognitcode/cognitcode/internal/config"
	"github.com/cognitcode/cognitcode/pkg/analyzers/smells"
	"github.com/cognitcode/cognitcode/pkg/observability"
	"github.com/cognitcode/cognitcode/pkg/pyast"
	"github.com/cognitcode/cognitcode/pkg/refactor"
	"github.com/cognitcode/cognitcode/pkg/version"
)

//go:embed web/index.html
var webFS embed.FS

// Server timeout constants for the HTTP server.
const (
	serverReadTimeout  = 30 * time.Second
	serverWriteTimeout = 60 * time.Second
	serverIdleTimeout  = 120 * time.Second
)

// API operation names for RED metrics.
const (
	opAnalyze  = "analyze"
	opRefactor = "refactor"
)

// AnalyzeRequest holds the request body for the analyze API endpoint.
type AnalyzeRequest struct {
	Code string `json:"code"`
}

// AnalyzeResponse holds the response body for the analyze API endpoint.
type AnalyzeResponse struct {
	Issues []smells.Issue `json:"issues"`
	Error  string         `json:"error,omitempty"`
}

// RefactorRequest holds the request body for the refactor API endpoint.
type RefactorRequest struct {
	Code string `json:"code"`
	Goal string `json:"goal,omitempty"`
}

// RefactorResponse holds the response body for the refactor API endpoint.
type RefactorResponse struct {
	Issues         []smells.Issue `json:"issues,omitempty"`
	RefactoredCode string         `json:"refactored_code,omitempty"`
	Explanation    string         `json:"explanation,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// ServeCommand holds the flags for the serve command.
type ServeCommand struct {
	port       string
	configPath string
}

// NewServeCommand creates and configures the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &ServeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and HTTP API",
		Long: `Start a web server that provides smell detection and AI refactoring via
HTTP API, plus a single-page UI for pasting snippets.

Analysis failures are reported in the response body; a malformed snippet
never takes the server down.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.port, "port", "p", "", "Port to listen on (overrides config)")
	cobraCmd.Flags().StringVarP(&cmd.configPath, "config", "c", "", "Path to config file")

	return cobraCmd
}

// appServer bundles the shared state behind the HTTP handlers.
type appServer struct {
	parser     *pyast.Parser
	refactorer *refactor.Client
	metrics    *observability.REDMetrics
	maxInput   uint64
}

// Run executes the serve command.
func (c *ServeCommand) Run(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if c.port != "" {
		port = c.port
	}

	maxInput, err := humanize.ParseBytes(cfg.Server.MaxInput)
	if err != nil {
		return fmt.Errorf("parse server.max_input: %w", err)
	}

	providers, err := initServeObservability()
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	promHandler, promProvider, err := observability.PrometheusHandler()
	if err != nil {
		return err
	}

	red, err := observability.NewREDMetrics(promProvider.Meter("cognitcode"))
	if err != nil {
		return err
	}

	app := &appServer{
		parser:     pyast.NewParser(),
		refactorer: newConfiguredRefactorer(cfg),
		metrics:    red,
		maxInput:   maxInput,
	}

	if app.refactorer == nil {
		providers.Logger.Warn("no API key configured, refactoring disabled",
			"env", config.EnvGoogleAPIKey)
	}

	handler := newServeMux(app, promHandler, providers)

	providers.Logger.Info("CognitCode server starting", "addr", "http://localhost:"+port)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	err = server.ListenAndServe()
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	return nil
}

// newConfiguredRefactorer builds the LLM client from config and environment,
// or nil when no API key is set. The refactor endpoint then reports the
// missing key per request.
func newConfiguredRefactorer(cfg *config.Config) *refactor.Client {
	apiKey := config.ResolveAPIKey()
	if apiKey == "" {
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.LLM.ParsedTimeout()}

	client, err := refactor.NewClient(apiKey,
		refactor.WithModel(cfg.LLM.Model),
		refactor.WithBaseURL(cfg.LLM.BaseURL),
		refactor.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil
	}

	return client
}

// newServeMux creates the HTTP mux with API routes wrapped in tracing
// middleware, plus health, metrics, and the embedded UI.
func newServeMux(app *appServer, promHandler http.Handler, providers observability.Providers) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/analyze", app.handleAnalyze)
	api.HandleFunc("/api/refactor", app.handleRefactor)

	mux := http.NewServeMux()
	mux.Handle("/api/", observability.HTTPMiddleware(providers.Tracer, api))
	mux.Handle("/healthz", observability.HealthHandler())
	mux.Handle("/readyz", observability.ReadyHandler())
	mux.Handle("/metrics", promHandler)
	mux.HandleFunc("/", app.handleIndex)

	return mux
}

func (app *appServer) handleIndex(responseWriter http.ResponseWriter, request *http.Request) {
	if request.URL.Path != "/" {
		http.NotFound(responseWriter, request)

		return
	}

	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(responseWriter, "UI unavailable", http.StatusInternalServerError)

		return
	}

	responseWriter.Header().Set("Content-Type", "text/html; charset=utf-8")

	_, _ = responseWriter.Write(page)
}

func (app *appServer) handleAnalyze(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	start := time.Now()
	decInflight := app.metrics.TrackInflight(request.Context(), opAnalyze)

	defer decInflight()

	var req AnalyzeRequest

	decodeErr := json.NewDecoder(request.Body).Decode(&req)
	if decodeErr != nil {
		app.metrics.RecordRequest(request.Context(), opAnalyze, observability.StatusError, time.Since(start))
		http.Error(responseWriter, "Invalid request body", http.StatusBadRequest)

		return
	}

	response := AnalyzeResponse{}

	issues, err := app.detect(request.Context(), req.Code)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Issues = issues
	}

	app.recordOutcome(request.Context(), opAnalyze, response.Error, start)
	writeJSONBody(request.Context(), responseWriter, response)
}

func (app *appServer) handleRefactor(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	start := time.Now()
	decInflight := app.metrics.TrackInflight(request.Context(), opRefactor)

	defer decInflight()

	var req RefactorRequest

	decodeErr := json.NewDecoder(request.Body).Decode(&req)
	if decodeErr != nil {
		app.metrics.RecordRequest(request.Context(), opRefactor, observability.StatusError, time.Since(start))
		http.Error(responseWriter, "Invalid request body", http.StatusBadRequest)

		return
	}

	response := app.refactorSnippet(request.Context(), req)

	app.recordOutcome(request.Context(), opRefactor, response.Error, start)
	writeJSONBody(request.Context(), responseWriter, response)
}

func (app *appServer) refactorSnippet(ctx context.Context, req RefactorRequest) RefactorResponse {
	response := RefactorResponse{}

	issues, err := app.detect(ctx, req.Code)
	if err != nil {
		response.Error = err.Error()

		return response
	}

	response.Issues = issues

	if app.refactorer == nil {
		response.Error = refactor.ErrMissingAPIKey.Error()

		return response
	}

	issuesJSON, err := smells.FormatIssuesJSON(issues)
	if err != nil {
		response.Error = err.Error()

		return response
	}

	goal := req.Goal
	if goal == "" {
		goal = refactor.DefaultGoal
	}

	resp, err := app.refactorer.Refactor(ctx, goal, issuesJSON, req.Code)
	if err != nil {
		response.Error = err.Error()

		return response
	}

	response.RefactoredCode = resp.RefactoredCode
	response.Explanation = resp.Explanation

	return response
}

// detect validates the snippet and runs smell detection. Validation and
// syntax errors come back as plain errors for the response body.
func (app *appServer) detect(ctx context.Context, code string) ([]smells.Issue, error) {
	err := validateSnippet(stdinFilename, []byte(code), app.maxInput)
	if err != nil {
		return nil, err
	}

	root, err := app.parser.Parse(ctx, []byte(code))
	if err != nil {
		return nil, err
	}

	return smells.Detect(root), nil
}

func (app *appServer) recordOutcome(ctx context.Context, op, errMsg string, start time.Time) {
	status := observability.StatusOK
	if errMsg != "" {
		status = observability.StatusError
	}

	app.metrics.RecordRequest(ctx, op, status, time.Since(start))
}

// writeJSONBody encodes the given value as JSON and writes it to the response writer.
func writeJSONBody(ctx context.Context, responseWriter http.ResponseWriter, value any) {
	responseWriter.Header().Set("Content-Type", "application/json")

	encodeErr := json.NewEncoder(responseWriter).Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

func initServeObservability() (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeServe

	return observability.Init(cfg)
}
