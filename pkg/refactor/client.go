package refactor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Default client settings. The base URL and model match the hosted Gemini
// generateContent REST endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 120 * time.Second
)

const (
	headerAPIKey      = "x-goog-api-key"
	responseMIMEType  = "application/json"
	markdownFence     = "```"
	markdownFenceJSON = "```json"
)

// Sentinel errors for model invocation.
var (
	// ErrMissingAPIKey indicates no provider credential was configured.
	ErrMissingAPIKey = errors.New("GOOGLE_API_KEY environment variable not set")

	// ErrEmptyResponse indicates the model returned no candidates.
	ErrEmptyResponse = errors.New("model returned no candidates")

	// ErrMalformedResponse indicates the model output is not the expected
	// JSON object with refactored_code and explanation string fields.
	ErrMalformedResponse = errors.New("malformed model response")
)

// responseSchema validates the model's JSON reply: a single object with
// exactly two string fields.
const responseSchema = `{
	"type": "object",
	"properties": {
		"refactored_code": {"type": "string"},
		"explanation": {"type": "string"}
	},
	"required": ["refactored_code", "explanation"],
	"additionalProperties": false
}`

// Response is the structured refactoring result produced by the model.
type Response struct {
	RefactoredCode string `json:"refactored_code"`
	Explanation    string `json:"explanation"`
}

// Client calls the hosted generateContent endpoint. The call is synchronous
// and is not retried; failures surface to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	schema     *gojsonschema.Schema
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the given API key.
// Returns ErrMissingAPIKey when the key is empty.
func NewClient(apiKey string, options ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		apiKey:     strings.TrimSpace(apiKey),
		schema:     schema,
	}

	for _, option := range options {
		option(client)
	}

	return client, nil
}

// Wire types for the generateContent endpoint.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Refactor builds the prompt from goal + issues + snippet, invokes the model,
// and returns the parsed, schema-validated result.
func (c *Client) Refactor(ctx context.Context, goal, issuesJSON, codeSnippet string) (*Response, error) {
	prompt, err := BuildPrompt(PromptInput{
		Goal:        goal,
		IssuesJSON:  issuesJSON,
		CodeSnippet: codeSnippet,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.generateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return c.parseResponse(raw)
}

// generateContent performs one blocking call to the model endpoint and
// returns the first candidate's text.
func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: responseMIMEType,
			Temperature:      0,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model endpoint: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body))) //nolint:err113 // status and body are dynamic.
	}

	var genResp generateResponse

	unmarshalErr := json.Unmarshal(body, &genResp)
	if unmarshalErr != nil {
		return "", fmt.Errorf("decode model response: %w", unmarshalErr)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// parseResponse strips optional markdown fences, validates the JSON object
// against the response schema, and unmarshals it.
func (c *Client) parseResponse(raw string) (*Response, error) {
	cleaned := stripMarkdownFences(raw)

	result, err := c.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, err.Error())
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, formatSchemaErrors(result))
	}

	var response Response

	unmarshalErr := json.Unmarshal([]byte(cleaned), &response)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, unmarshalErr.Error())
	}

	return &response, nil
}

// stripMarkdownFences removes a surrounding ```json ... ``` block if present.
// Some models wrap JSON output in fences despite instructions not to.
func stripMarkdownFences(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, markdownFenceJSON) {
		trimmed = strings.TrimPrefix(trimmed, markdownFenceJSON)
	} else if strings.HasPrefix(trimmed, markdownFence) {
		trimmed = strings.TrimPrefix(trimmed, markdownFence)
	} else {
		return trimmed
	}

	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), markdownFence)

	return strings.TrimSpace(trimmed)
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	descriptions := make([]string, 0, len(result.Errors()))

	for _, schemaErr := range result.Errors() {
		descriptions = append(descriptions, schemaErr.String())
	}

	return strings.Join(descriptions, "; ")
}
