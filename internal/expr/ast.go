// Package expr implements the magpie expression language: a closed grammar
// of literals, property paths, comparisons, boolean logic, arithmetic and
// built-in function calls, evaluated against a per-note context.
//
// Expressions are parsed by a recursive-descent parser into a typed AST and
// evaluated by a tree walker. Identifiers resolve strictly against the
// supplied context and a fixed built-in table; an expression cannot perform
// I/O or reach anything outside its context.
package expr

// Node is an expression AST node.
type Node interface {
	exprNode()
}

// Literal is a constant value: string, number, boolean or null.
type Literal struct {
	Value interface{}
}

func (Literal) exprNode() {}

// Path is a property access: a bare identifier or a dotted chain like
// "file.name" or "formula.total".
type Path struct {
	Parts []string
}

func (Path) exprNode() {}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpEq BinaryOp = iota // ==
	OpNeq                // !=
	OpLt                 // <
	OpLte                // <=
	OpGt                 // >
	OpGte                // >=
	OpAnd                // && / and
	OpOr                 // || / or
	OpAdd                // + (numeric add or string concat)
	OpSub                // -
	OpMul                // *
	OpDiv                // /
	OpMod                // %
)

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "?"
	}
}

// Binary is a binary operation.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (Binary) exprNode() {}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	OpNot UnaryOp = iota // ! / not
	OpNeg                // unary -
)

// Unary is a unary operation.
type Unary struct {
	Op UnaryOp
	X  Node
}

func (Unary) exprNode() {}

// Call is a function invocation. Name is the full dotted name, e.g.
// "round" or "file.hasTag".
type Call struct {
	Name string
	Args []Node
}

func (Call) exprNode() {}

// List is a list literal: [a, b, c].
type List struct {
	Items []Node
}

func (List) exprNode() {}
