package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cognitcode/cognitcode/pkg/analyzers/smells"
	"github.com/cognitcode/cognitcode/pkg/refactor"
)

// Tool name constants.
const (
	ToolNameAnalyze  = "cognitcode_analyze"
	ToolNameRefactor = "cognitcode_refactor"
)

// Input size limits.
const (
	// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
	MaxCodeInputBytes = 1 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrNoRefactorer indicates the refactor tool was called without a configured API key.
	ErrNoRefactorer = errors.New("refactoring unavailable: GOOGLE_API_KEY environment variable not set")
)

// Input types (auto-generate JSON schemas via struct tags).

// AnalyzeInput is the input schema for the cognitcode_analyze tool.
type AnalyzeInput struct {
	Code string `json:"code" jsonschema:"Python source code to analyze"`
}

// RefactorInput is the input schema for the cognitcode_refactor tool.
type RefactorInput struct {
	Code string `json:"code"           jsonschema:"Python source code to refactor"`
	Goal string `json:"goal,omitempty" jsonschema:"refactoring goal (default: Improve Readability)"`
}

// AnalyzeOutput is the structured payload of a cognitcode_analyze result.
type AnalyzeOutput struct {
	Issues []smells.Issue `json:"issues"`
}

// RefactorOutput is the structured payload of a cognitcode_refactor result.
type RefactorOutput struct {
	Issues         []smells.Issue `json:"issues"`
	RefactoredCode string         `json:"refactored_code"`
	Explanation    string         `json:"explanation"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleAnalyze(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code)
	if err != nil {
		return errorResult(err)
	}

	root, err := s.parser.Parse(ctx, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	issues := smells.Detect(root)

	return jsonResult(AnalyzeOutput{Issues: issues})
}

func (s *Server) handleRefactor(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input RefactorInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code)
	if err != nil {
		return errorResult(err)
	}

	if s.refactorer == nil {
		return errorResult(ErrNoRefactorer)
	}

	root, err := s.parser.Parse(ctx, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	issues := smells.Detect(root)

	issuesJSON, err := smells.FormatIssuesJSON(issues)
	if err != nil {
		return errorResult(err)
	}

	goal := input.Goal
	if goal == "" {
		goal = refactor.DefaultGoal
	}

	resp, err := s.refactorer.Refactor(ctx, goal, issuesJSON, input.Code)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(RefactorOutput{
		Issues:         issues,
		RefactoredCode: resp.RefactoredCode,
		Explanation:    resp.Explanation,
	})
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateCodeInput checks common code input constraints.
func validateCodeInput(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
