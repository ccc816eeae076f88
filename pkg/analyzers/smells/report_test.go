package smells

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIssues() []Issue {
	return []Issue{
		{LineNumber: 1, IssueCode: CodeFuncTooLong, Description: "Function 'f' has 21 statements, exceeding the threshold of 20."},
		{LineNumber: 2, IssueCode: CodeMagicNumber, Description: "The constant '42' is a magic number; consider defining it as a named constant."},
		{LineNumber: 9, IssueCode: CodeMagicNumber, Description: "The constant '7' is a magic number; consider defining it as a named constant."},
	}
}

func TestFormatIssuesTable(t *testing.T) {
	var buf bytes.Buffer

	FormatIssuesTable(sampleIssues(), &buf, true)

	output := buf.String()

	assert.Contains(t, output, "LINE")
	assert.Contains(t, output, "FUNC_TOO_LONG")
	assert.Contains(t, output, "MAGIC_NUMBER")
	assert.Contains(t, output, "Function 'f' has 21 statements")

	// Emission order preserved: the function issue row comes first.
	funcIdx := strings.Index(output, "FUNC_TOO_LONG")
	magicIdx := strings.Index(output, "MAGIC_NUMBER")
	assert.Less(t, funcIdx, magicIdx)
}

func TestFormatIssuesTableEmpty(t *testing.T) {
	var buf bytes.Buffer

	FormatIssuesTable(nil, &buf, true)

	assert.Equal(t, "No issues detected.\n", buf.String())
}

func TestCountByCode(t *testing.T) {
	t.Parallel()

	counts := CountByCode(sampleIssues())

	assert.Equal(t, 1, counts[CodeFuncTooLong])
	assert.Equal(t, 2, counts[CodeMagicNumber])
}

func TestCountByCodeEmpty(t *testing.T) {
	t.Parallel()

	counts := CountByCode(nil)

	assert.Empty(t, counts)
}

func TestFormatIssuesPlot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := FormatIssuesPlot(sampleIssues(), &buf)
	require.NoError(t, err)

	output := buf.String()

	assert.Contains(t, output, "Code Smell Distribution")
	assert.Contains(t, output, "FUNC_TOO_LONG")
	assert.Contains(t, output, "MAGIC_NUMBER")
}
