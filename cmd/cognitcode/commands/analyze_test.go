package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitcode/cognitcode/pkg/analyzers/smells"
)

func TestValidateSnippet(t *testing.T) {
	t.Parallel()

	err := validateSnippet("snippet.py", []byte("x = 1\n"), 1024)
	require.NoError(t, err)
}

func TestValidateSnippetEmpty(t *testing.T) {
	t.Parallel()

	err := validateSnippet("snippet.py", nil, 1024)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestValidateSnippetTooLarge(t *testing.T) {
	t.Parallel()

	err := validateSnippet("snippet.py", []byte("x = 1\n"), 3)
	require.ErrorIs(t, err, ErrInputTooLarge)
}

func TestValidateSnippetWrongLanguage(t *testing.T) {
	t.Parallel()

	source := []byte("package main\n\nfunc main() {}\n")

	err := validateSnippet("main.go", source, 1024)
	require.ErrorIs(t, err, ErrNotPython)
	assert.Contains(t, err.Error(), "Go")
}

func TestReadSnippetFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o600))

	filename, content, err := readSnippet([]string{path}, "1MB")
	require.NoError(t, err)
	assert.Equal(t, path, filename)
	assert.Equal(t, []byte("x = 1\n"), content)
}

func TestReadSnippetMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := readSnippet([]string{filepath.Join(t.TempDir(), "absent.py")}, "1MB")
	require.Error(t, err)
}

func TestReadSnippetBadMaxInput(t *testing.T) {
	t.Parallel()

	_, _, err := readSnippet(nil, "a lot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse max-input")
}

func TestWriteReportJSON(t *testing.T) {
	t.Parallel()

	cmd := &AnalyzeCommand{format: FormatJSON}
	issues := []smells.Issue{
		{LineNumber: 1, IssueCode: smells.CodeMagicNumber, Description: "The constant '42' is a magic number; consider defining it as a named constant."},
	}

	var buf bytes.Buffer

	require.NoError(t, cmd.writeReport(issues, &buf))
	assert.Contains(t, buf.String(), `"issue_code": "MAGIC_NUMBER"`)
}

func TestWriteReportYAML(t *testing.T) {
	t.Parallel()

	cmd := &AnalyzeCommand{format: FormatYAML}
	issues := []smells.Issue{
		{LineNumber: 3, IssueCode: smells.CodeFuncTooLong, Description: "Function 'run' has 21 statements, exceeding the threshold of 20."},
	}

	var buf bytes.Buffer

	require.NoError(t, cmd.writeReport(issues, &buf))
	assert.Contains(t, buf.String(), "line_number: 3")
	assert.Contains(t, buf.String(), "issue_code: FUNC_TOO_LONG")
}

func TestWriteReportText(t *testing.T) {
	cmd := &AnalyzeCommand{format: FormatText, noColor: true}

	var buf bytes.Buffer

	require.NoError(t, cmd.writeReport(nil, &buf))
	assert.Contains(t, buf.String(), "No issues detected.")
}

func TestWriteReportUnknownFormat(t *testing.T) {
	t.Parallel()

	cmd := &AnalyzeCommand{format: "xml"}

	var buf bytes.Buffer

	err := cmd.writeReport(nil, &buf)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAnalyzeCommandEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "sample.py")
	output := filepath.Join(dir, "report.json")

	require.NoError(t, os.WriteFile(input, []byte("x = 42\n"), 0o600))

	cmd := NewAnalyzeCommand()
	cmd.SetArgs([]string{input, "--format", "json", "--output", output})

	require.NoError(t, cmd.Execute())

	report, err := os.ReadFile(output)
	require.NoError(t, err)

	issues, err := smells.ParseIssuesJSON(string(report))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, smells.CodeMagicNumber, issues[0].IssueCode)
}

func TestAnalyzeCommandSyntaxError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "broken.py")

	require.NoError(t, os.WriteFile(input, []byte("def f(:\n"), 0o600))

	cmd := NewAnalyzeCommand()
	cmd.SetArgs([]string{input, "--format", "json"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Python syntax")
}

func TestAnalyzeCommandWritesPlot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "sample.py")
	output := filepath.Join(dir, "report.json")
	plot := filepath.Join(dir, "plot.html")

	require.NoError(t, os.WriteFile(input, []byte("x = 42\n"), 0o600))

	cmd := NewAnalyzeCommand()
	cmd.SetArgs([]string{input, "--format", "json", "--output", output, "--plot", plot})

	require.NoError(t, cmd.Execute())

	page, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Code Smell Distribution")
}
