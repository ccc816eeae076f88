// Package node provides the canonical syntax-tree node structure produced by
// the Python parser, plus pre-order traversal over it.
package node

// Type represents a type label for a node.
type Type string

// Node type constants for the kinds the analyzers dispatch on. Everything the
// mapping table does not recognize becomes TypeSynthetic with the raw
// tree-sitter kind preserved in Props["kind"].
const (
	TypeFile       Type = "File"
	TypeFunction   Type = "Function"
	TypeClass      Type = "Class"
	TypeBlock      Type = "Block"
	TypeIf         Type = "If"
	TypeLoop       Type = "Loop"
	TypeLiteral    Type = "Literal"
	TypeIdentifier Type = "Identifier"
	TypeCall       Type = "Call"
	TypeComment    Type = "Comment"
	TypeSynthetic  Type = "Synthetic"
)

// Literal kind values stored in Props["kind"] on TypeLiteral nodes.
const (
	LiteralNumber = "number"
	LiteralString = "string"
	LiteralBool   = "bool"
	LiteralNone   = "none"
)

// PropName is the Props key holding a function or class name.
const PropName = "name"

// PropKind is the Props key holding a literal kind or a raw tree-sitter kind.
const PropKind = "kind"

// Positions holds the source location of a node. Lines and columns are
// 1-based; offsets are byte offsets.
type Positions struct {
	StartLine   uint `json:"start_line,omitempty"`
	StartCol    uint `json:"start_col,omitempty"`
	StartOffset uint `json:"start_offset,omitempty"`
	EndLine     uint `json:"end_line,omitempty"`
	EndCol      uint `json:"end_col,omitempty"`
	EndOffset   uint `json:"end_offset,omitempty"`
}

// Node is the canonical syntax-tree node.
//
// Fields:
//
//	Type: node type (e.g., "Function", "Literal").
//	Token: source text for leaf nodes.
//	Pos: source code position info (optional).
//	Props: additional properties (name, kind).
//	Children: child nodes (ordered).
type Node struct {
	Token    string            `json:"token,omitempty"`
	Type     Type              `json:"type,omitempty"`
	Pos      *Positions        `json:"pos,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// NewNode creates a node with the given type.
func NewNode(nodeType Type) *Node {
	return &Node{Type: nodeType}
}

// NewNodeWithToken creates a node with the given type and token.
func NewNodeWithToken(nodeType Type, token string) *Node {
	return &Node{Type: nodeType, Token: token}
}

// AddChild appends a child node, ignoring nils.
func (targetNode *Node) AddChild(child *Node) {
	if child == nil {
		return
	}

	targetNode.Children = append(targetNode.Children, child)
}

// Prop returns the named property, or "" when absent.
func (targetNode *Node) Prop(key string) string {
	if targetNode.Props == nil {
		return ""
	}

	return targetNode.Props[key]
}

// SetProp sets the named property, allocating the map lazily.
func (targetNode *Node) SetProp(key, value string) {
	if targetNode.Props == nil {
		targetNode.Props = make(map[string]string)
	}

	targetNode.Props[key] = value
}

// StartLine returns the 1-based starting line, or 0 when positions are absent.
func (targetNode *Node) StartLine() uint {
	if targetNode.Pos == nil {
		return 0
	}

	return targetNode.Pos.StartLine
}

// Body returns the first Block child, or nil. For Function and Class nodes
// this is the statement body.
func (targetNode *Node) Body() *Node {
	for _, child := range targetNode.Children {
		if child.Type == TypeBlock {
			return child
		}
	}

	return nil
}

// VisitPreOrder visits all nodes in pre-order (root, then children
// left-to-right). Nil receivers are a no-op.
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	fn(targetNode)

	for _, child := range targetNode.Children {
		child.VisitPreOrder(fn)
	}
}
