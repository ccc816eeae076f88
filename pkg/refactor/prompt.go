// Package refactor builds the refactoring prompt and invokes the hosted model
// API to obtain a rewritten snippet plus an explanation.
package refactor

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultGoal is the refactoring goal used when the caller supplies none.
const DefaultGoal = "Improve Readability"

// promptTemplate is the filled prompt sent to the model. Three fields: the
// refactoring goal, the JSON array of issue records, and the original source.
const promptTemplate = `You are an expert software architect specializing in Python code quality.
Your task is to refactor a given code snippet based on a list of identified code smells and a primary refactoring goal.

Primary Goal: {{.Goal}}

Identified Code Smells in JSON format:
{{.IssuesJSON}}

Original Code Snippet:
` + "```python\n{{.CodeSnippet}}\n```" + `

Instructions:
1. Analyze the original code and the provided code smells.
2. Refactor the code to address the issues and align with the primary goal. The refactored code must be syntactically correct Python.
3. Provide a clear, step-by-step explanation of the changes made, linking them to software design principles where applicable.
4. Your final output MUST be a single, valid JSON object. Do not add any text, notes, or explanations outside of the JSON structure.

The JSON object must follow this exact schema: { "refactored_code": "The complete, refactored Python code as a single string.", "explanation": "A multi-line string explaining the key changes made and the principles behind them." }
`

var promptTmpl = template.Must(template.New("refactor").Parse(promptTemplate))

// PromptInput holds the three template fields.
type PromptInput struct {
	Goal        string
	IssuesJSON  string
	CodeSnippet string
}

// BuildPrompt fills the prompt template. An empty goal falls back to
// DefaultGoal.
func BuildPrompt(input PromptInput) (string, error) {
	if input.Goal == "" {
		input.Goal = DefaultGoal
	}

	var builder strings.Builder

	err := promptTmpl.Execute(&builder, input)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	return builder.String(), nil
}
