// Package dfast defines the walker's only dependency on earlier
// compiler phases: the Tree interface a typed expression node
// implements, plus a minimal in-memory Node standing in for the real
// surface-language parser (out of scope for this module).
//
// Mirrors how go/ssa depends only on go/ast and go/types and never on
// a particular parser invocation -- internal/walker is written against
// Tree, never against Node directly.
package dfast

import "fmt"

// TokenType enumerates the fixed set of expression-tree node kinds the
// walker dispatches on.
type TokenType int

const (
	Variable TokenType = iota
	IntLiteral
	FloatLiteral
	StringLiteral
	BoolLiteral
	Operator
	CallFunction
	ArrayLoad
	StructLoad
	ArrayRange
	ArrayElems
	ArrayKVElems
)

func (t TokenType) String() string {
	switch t {
	case Variable:
		return "VARIABLE"
	case IntLiteral:
		return "INT_LITERAL"
	case FloatLiteral:
		return "FLOAT_LITERAL"
	case StringLiteral:
		return "STRING_LITERAL"
	case BoolLiteral:
		return "BOOL_LITERAL"
	case Operator:
		return "OPERATOR"
	case CallFunction:
		return "CALL_FUNCTION"
	case ArrayLoad:
		return "ARRAY_LOAD"
	case StructLoad:
		return "STRUCT_LOAD"
	case ArrayRange:
		return "ARRAY_RANGE"
	case ArrayElems:
		return "ARRAY_ELEMS"
	case ArrayKVElems:
		return "ARRAY_KV_ELEMS"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Tree is the expression-tree node interface the walker consumes. An
// earlier phase (the surface parser, out of scope here) produces
// trees implementing this; Node below is the test-fixture
// implementation internal/walker's own tests build against.
type Tree interface {
	// GetType returns this node's token kind.
	GetType() TokenType
	// Child returns the i'th child, panicking if i is out of range.
	Child(i int) Tree
	// GetText returns the node's literal text: a variable/function
	// name, a literal's source spelling, or an operator symbol.
	GetText() string
	// GetChildCount returns the number of children.
	GetChildCount() int
	// Line returns the source line, for diagnostics.
	Line() int
}

// Node is a minimal in-memory Tree implementation, built by hand or
// by a test helper -- not a parser. It stands in for the real
// SwiftAST node type in the walker's own tests.
type Node struct {
	Typ      TokenType
	Text     string
	Children []*Node
	Ln       int
}

// NewNode constructs a leaf or interior node.
func NewNode(typ TokenType, text string, line int, children ...*Node) *Node {
	return &Node{Typ: typ, Text: text, Children: children, Ln: line}
}

func (n *Node) GetType() TokenType { return n.Typ }

func (n *Node) Child(i int) Tree {
	if i < 0 || i >= len(n.Children) {
		panic(fmt.Sprintf("dfast: child index %d out of range (have %d)", i, len(n.Children)))
	}
	return n.Children[i]
}

func (n *Node) GetText() string    { return n.Text }
func (n *Node) GetChildCount() int { return len(n.Children) }
func (n *Node) Line() int          { return n.Ln }
