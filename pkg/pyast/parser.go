// Package pyast parses Python source text into the canonical node tree used
// by the analyzers. It wraps the tree-sitter Python grammar behind a fixed
// mapping table: one case per node kind of interest, Synthetic for the rest.
package pyast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tspython "github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/cognitcode/cognitcode/pkg/pyast/node"
)

// Sentinel errors for parser operations.
var (
	errNoRootNode = errors.New("pyast: no root node")
	errPoolType   = errors.New("pyast: pool returned unexpected type")
)

// SyntaxError reports source that tree-sitter could not parse cleanly. Line
// is the 1-based line of the first invalid construct.
type SyntaxError struct {
	Line uint
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid Python syntax at line %d", e.Line)
}

// kindTypes maps tree-sitter Python node kinds to canonical node types.
// Kinds without an entry become Synthetic with the kind preserved in props.
var kindTypes = map[string]node.Type{
	"module":              node.TypeFile,
	"function_definition": node.TypeFunction,
	"class_definition":    node.TypeClass,
	"block":               node.TypeBlock,
	"if_statement":        node.TypeIf,
	"for_statement":       node.TypeLoop,
	"while_statement":     node.TypeLoop,
	"identifier":          node.TypeIdentifier,
	"call":                node.TypeCall,
	"comment":             node.TypeComment,
}

// literalKinds maps tree-sitter literal kinds to the Props["kind"] value on
// the resulting Literal node. Booleans and None are kept distinct from
// numbers so the magic-number rule can exclude them.
var literalKinds = map[string]string{
	"integer": node.LiteralNumber,
	"float":   node.LiteralNumber,
	"string":  node.LiteralString,
	"true":    node.LiteralBool,
	"false":   node.LiteralBool,
	"none":    node.LiteralNone,
}

// Parser converts Python source into canonical node trees. It is safe for
// concurrent use; tree-sitter parser instances are pooled.
type Parser struct {
	language     *sitter.Language
	tsParserPool sync.Pool
}

// NewParser creates a Parser backed by the tree-sitter Python grammar.
func NewParser() *Parser {
	lang := sitter.NewLanguage(tspython.GetLanguage())

	return &Parser{
		language: lang,
		tsParserPool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Parse parses Python source and returns the canonical tree root.
// Invalid source returns a *SyntaxError naming the first offending line;
// detection never runs on such input.
func (parser *Parser) Parse(ctx context.Context, content []byte) (*node.Node, error) {
	tsParser, ok := parser.tsParserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parser.tsParserPool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("pyast: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	if syntaxErr := findSyntaxError(root); syntaxErr != nil {
		return nil, syntaxErr
	}

	return convert(root, content), nil
}

// findSyntaxError walks the raw tree-sitter tree for the first ERROR or
// MISSING node. Tree-sitter never refuses input; malformed source shows up
// as error nodes inside an otherwise well-formed tree.
func findSyntaxError(tsNode sitter.Node) *SyntaxError {
	if !tsNode.HasError() {
		return nil
	}

	if tsNode.IsError() || tsNode.IsMissing() {
		return &SyntaxError{Line: uint(tsNode.StartPoint().Row) + 1}
	}

	for idx := range tsNode.ChildCount() {
		if syntaxErr := findSyntaxError(tsNode.Child(idx)); syntaxErr != nil {
			return syntaxErr
		}
	}

	// HasError was set but no error node was reachable; report the subtree start.
	return &SyntaxError{Line: uint(tsNode.StartPoint().Row) + 1}
}

// convert maps a tree-sitter node and its named descendants to canonical nodes.
func convert(tsNode sitter.Node, source []byte) *node.Node {
	kind := tsNode.Type()

	converted := &node.Node{
		Type: mapKind(kind),
		Pos:  extractPositions(tsNode),
	}

	if literalKind, isLiteral := literalKinds[kind]; isLiteral {
		converted.Type = node.TypeLiteral
		converted.SetProp(node.PropKind, literalKind)
	} else if converted.Type == node.TypeSynthetic {
		converted.SetProp(node.PropKind, kind)
	}

	if converted.Type == node.TypeFunction || converted.Type == node.TypeClass {
		if name := tsNode.ChildByFieldName("name"); !name.IsNull() {
			converted.SetProp(node.PropName, name.Content(source))
		}
	}

	if tsNode.NamedChildCount() == 0 {
		converted.Token = tsNode.Content(source)

		return converted
	}

	for idx := range tsNode.NamedChildCount() {
		converted.AddChild(convert(tsNode.NamedChild(idx), source))
	}

	return converted
}

func mapKind(kind string) node.Type {
	if nodeType, ok := kindTypes[kind]; ok {
		return nodeType
	}

	return node.TypeSynthetic
}

func extractPositions(tsNode sitter.Node) *node.Positions {
	start := tsNode.StartPoint()
	end := tsNode.EndPoint()

	return &node.Positions{
		StartLine:   uint(start.Row) + 1,
		StartCol:    uint(start.Column) + 1,
		StartOffset: uint(tsNode.StartByte()),
		EndLine:     uint(end.Row) + 1,
		EndCol:      uint(end.Column) + 1,
		EndOffset:   uint(tsNode.EndByte()),
	}
}
