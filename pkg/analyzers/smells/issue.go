// Package smells implements the code-smell detector: a single-pass visitor
// over the Python node tree that collects issue records for the two fixed
// rules (oversized functions, numeric literals).
package smells

import (
	"encoding/json"
	"fmt"
)

// IssueCode identifies the kind of a detected issue. The vocabulary is fixed.
type IssueCode string

// Issue code values.
const (
	// CodeFuncTooLong marks a function whose body exceeds the statement threshold.
	CodeFuncTooLong IssueCode = "FUNC_TOO_LONG"

	// CodeMagicNumber marks a bare numeric literal.
	CodeMagicNumber IssueCode = "MAGIC_NUMBER"
)

// Issue is one detected code-quality finding. Immutable once created; line
// numbers are 1-based and come from the source parse.
type Issue struct {
	LineNumber  uint      `json:"line_number"  yaml:"line_number"`
	IssueCode   IssueCode `json:"issue_code"   yaml:"issue_code"`
	Description string    `json:"description"  yaml:"description"`
}

// FormatIssuesJSON serializes issues to an indented JSON array in emission
// order. Deserializing the output reproduces the same issues in the same
// order. A nil or empty slice serializes to an empty array.
func FormatIssuesJSON(issues []Issue) (string, error) {
	if issues == nil {
		issues = []Issue{}
	}

	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal issues: %w", err)
	}

	return string(data), nil
}

// ParseIssuesJSON deserializes a JSON array produced by FormatIssuesJSON.
func ParseIssuesJSON(data string) ([]Issue, error) {
	var issues []Issue

	err := json.Unmarshal([]byte(data), &issues)
	if err != nil {
		return nil, fmt.Errorf("unmarshal issues: %w", err)
	}

	return issues, nil
}
