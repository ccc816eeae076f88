package smells

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitcode/cognitcode/pkg/pyast"
	"github.com/cognitcode/cognitcode/pkg/pyast/node"
)

// functionWithStatements builds Python source for a function whose body holds
// the given number of literal-free statements.
func functionWithStatements(name string, count int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "def %s(y):\n", name)

	for range count {
		sb.WriteString("    x = y\n")
	}

	return sb.String()
}

func parseSource(t *testing.T, source string) *node.Node {
	t.Helper()

	root, err := pyast.NewParser().Parse(context.Background(), []byte(source))
	require.NoError(t, err)

	return root
}

func TestDetectFunctionTooLong(t *testing.T) {
	t.Parallel()

	root := parseSource(t, functionWithStatements("bloated", FuncStatementThreshold+1))

	issues := Detect(root)

	require.Len(t, issues, 1)
	assert.Equal(t, CodeFuncTooLong, issues[0].IssueCode)
	assert.Equal(t, uint(1), issues[0].LineNumber)
	assert.Equal(t,
		"Function 'bloated' has 21 statements, exceeding the threshold of 20.",
		issues[0].Description)
}

func TestDetectFunctionAtThresholdPasses(t *testing.T) {
	t.Parallel()

	root := parseSource(t, functionWithStatements("dense", FuncStatementThreshold))

	issues := Detect(root)

	assert.Empty(t, issues)
}

func TestDetectCommentsNotCounted(t *testing.T) {
	t.Parallel()

	var sb strings.Builder

	sb.WriteString("def noted(y):\n")

	for range FuncStatementThreshold {
		sb.WriteString("    x = y\n")
		sb.WriteString("    # a remark\n")
	}

	root := parseSource(t, sb.String())

	issues := Detect(root)

	assert.Empty(t, issues)
}

func TestDetectMagicNumbers(t *testing.T) {
	t.Parallel()

	root := parseSource(t, "t = 0\nu = 1\nv = 3.14\nflag = True\nnone = None\n")

	issues := Detect(root)

	require.Len(t, issues, 3)

	tokens := make([]string, 0, len(issues))
	for _, issue := range issues {
		assert.Equal(t, CodeMagicNumber, issue.IssueCode)
		tokens = append(tokens, issueToken(issue))
	}

	assert.Equal(t, []string{"0", "1", "3.14"}, tokens)
	assert.Equal(t, uint(2), issues[1].LineNumber)
}

// issueToken pulls the quoted literal back out of a magic-number description.
func issueToken(issue Issue) string {
	start := strings.Index(issue.Description, "'")
	end := strings.LastIndex(issue.Description, "'")

	return issue.Description[start+1 : end]
}

func TestDetectMagicNumberDescription(t *testing.T) {
	t.Parallel()

	root := parseSource(t, "windows = 42\n")

	issues := Detect(root)

	require.Len(t, issues, 1)
	assert.Equal(t,
		"The constant '42' is a magic number; consider defining it as a named constant.",
		issues[0].Description)
}

func TestDetectPreOrderEmission(t *testing.T) {
	t.Parallel()

	source := functionWithStatements("outer", FuncStatementThreshold+1) + "    z = 7\n"

	root := parseSource(t, source)

	issues := Detect(root)

	require.Len(t, issues, 2)
	assert.Equal(t, CodeFuncTooLong, issues[0].IssueCode)
	assert.Equal(t, CodeMagicNumber, issues[1].IssueCode)
}

func TestDetectNestedFunctions(t *testing.T) {
	t.Parallel()

	var sb strings.Builder

	sb.WriteString("def outer(y):\n")
	sb.WriteString("    def inner(y):\n")

	for range FuncStatementThreshold + 1 {
		sb.WriteString("        x = y\n")
	}

	for range FuncStatementThreshold - 1 {
		sb.WriteString("    x = y\n")
	}

	root := parseSource(t, sb.String())

	issues := Detect(root)

	// Only inner exceeds the threshold; outer counts inner as one statement.
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "'inner'")
	assert.Equal(t, uint(2), issues[0].LineNumber)
}

func TestDetectBothRulesIndependent(t *testing.T) {
	t.Parallel()

	var sb strings.Builder

	sb.WriteString("def loaded(y):\n")

	for idx := range FuncStatementThreshold + 1 {
		fmt.Fprintf(&sb, "    x = %d\n", idx)
	}

	root := parseSource(t, sb.String())

	issues := Detect(root)

	// One length issue plus one magic number per literal.
	require.Len(t, issues, FuncStatementThreshold+2)
	assert.Equal(t, CodeFuncTooLong, issues[0].IssueCode)

	for _, issue := range issues[1:] {
		assert.Equal(t, CodeMagicNumber, issue.IssueCode)
	}
}

func TestDetectEmptyTree(t *testing.T) {
	t.Parallel()

	root := parseSource(t, "")

	issues := Detect(root)

	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestVisitorOnConstructedTree(t *testing.T) {
	t.Parallel()

	fn := node.NewNode(node.TypeFunction)
	fn.SetProp(node.PropName, "built")
	fn.Pos = &node.Positions{StartLine: 5}

	body := node.NewNode(node.TypeBlock)

	for range FuncStatementThreshold + 1 {
		body.AddChild(node.NewNode(node.TypeSynthetic))
	}

	fn.AddChild(body)

	issues := Detect(fn)

	require.Len(t, issues, 1)
	assert.Equal(t, uint(5), issues[0].LineNumber)
	assert.Contains(t, issues[0].Description, "'built'")
}

func TestVisitorAnonymousFunctionName(t *testing.T) {
	t.Parallel()

	fn := node.NewNode(node.TypeFunction)
	body := node.NewNode(node.TypeBlock)

	for range FuncStatementThreshold + 1 {
		body.AddChild(node.NewNode(node.TypeSynthetic))
	}

	fn.AddChild(body)

	issues := Detect(fn)

	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "'anonymous'")
}

func TestVisitorFunctionWithoutBody(t *testing.T) {
	t.Parallel()

	fn := node.NewNode(node.TypeFunction)

	issues := Detect(fn)

	assert.Empty(t, issues)
}
