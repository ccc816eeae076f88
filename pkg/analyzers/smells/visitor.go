package smells

import (
	"fmt"

	"github.com/cognitcode/cognitcode/pkg/analyzers/analyze"
	"github.com/cognitcode/cognitcode/pkg/pyast/node"
)

// FuncStatementThreshold is the maximum number of immediate body statements a
// function may have before it is flagged.
const FuncStatementThreshold = 20

const anonymousFunctionName = "anonymous"

// SmellVisitor implements analyze.NodeVisitor, collecting issues in traversal
// order. Rules apply independently; a single tree can trigger any number of
// each. There is no deduplication, severity ranking, or suppression.
type SmellVisitor struct {
	issues []Issue
}

// NewSmellVisitor creates a SmellVisitor with an empty accumulator.
func NewSmellVisitor() *SmellVisitor {
	return &SmellVisitor{
		issues: make([]Issue, 0),
	}
}

// OnEnter is called when entering a node during traversal. Emitting on enter
// keeps issue order pre-order: an outer function is reported before anything
// nested inside it, literals in textual order.
func (v *SmellVisitor) OnEnter(n *node.Node, _ int) {
	switch n.Type {
	case node.TypeFunction:
		v.checkFunctionLength(n)
	case node.TypeLiteral:
		v.checkMagicNumber(n)
	}
}

// OnExit is called when exiting a node during traversal.
func (v *SmellVisitor) OnExit(_ *node.Node, _ int) {}

// Issues returns the collected issues in emission order.
func (v *SmellVisitor) Issues() []Issue {
	return v.issues
}

// checkFunctionLength flags functions whose body holds more than
// FuncStatementThreshold immediate statements. Comments inside the body block
// are not statements and are not counted.
func (v *SmellVisitor) checkFunctionLength(funcNode *node.Node) {
	body := funcNode.Body()
	if body == nil {
		return
	}

	count := 0

	for _, child := range body.Children {
		if child.Type != node.TypeComment {
			count++
		}
	}

	if count <= FuncStatementThreshold {
		return
	}

	name := funcNode.Prop(node.PropName)
	if name == "" {
		name = anonymousFunctionName
	}

	v.issues = append(v.issues, Issue{
		LineNumber: funcNode.StartLine(),
		IssueCode:  CodeFuncTooLong,
		Description: fmt.Sprintf(
			"Function '%s' has %d statements, exceeding the threshold of %d.",
			name, count, FuncStatementThreshold,
		),
	})
}

// checkMagicNumber flags every numeric literal, trivial ones included.
// Booleans and other constant kinds are excluded.
func (v *SmellVisitor) checkMagicNumber(literalNode *node.Node) {
	if literalNode.Prop(node.PropKind) != node.LiteralNumber {
		return
	}

	v.issues = append(v.issues, Issue{
		LineNumber: literalNode.StartLine(),
		IssueCode:  CodeMagicNumber,
		Description: fmt.Sprintf(
			"The constant '%s' is a magic number; consider defining it as a named constant.",
			literalNode.Token,
		),
	})
}

// Detect runs the detector over a parsed tree and returns the issues in
// traversal order. Malformed trees are the caller's responsibility; upstream
// parsing guarantees validity.
func Detect(root *node.Node) []Issue {
	visitor := NewSmellVisitor()

	traverser := analyze.NewTraverser()
	traverser.RegisterVisitor(visitor)
	traverser.Traverse(root)

	return visitor.Issues()
}
