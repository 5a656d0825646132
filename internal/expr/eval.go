package expr

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aidanlsb/magpie/internal/props"
)

// EvalError reports that an expression failed to parse or evaluate.
// Callers degrade on it (filters fail closed, formulas go null) instead of
// aborting the surrounding query.
type EvalError struct {
	Expr  string
	Cause error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Cause)
}

func (e *EvalError) Unwrap() error { return e.Cause }

// Context is the property namespace an expression is evaluated against.
// It is built once per note per query and never persisted.
type Context struct {
	// File is the file-intrinsic property namespace.
	File props.FileProps

	// Note is the frontmatter property map with date-like keys coerced.
	// Bare identifiers resolve here first.
	Note map[string]interface{}

	// Formula holds evaluated formula values for this note.
	Formula map[string]interface{}

	// Frontmatter is the raw (uncoerced) frontmatter map, used by
	// file.hasProperty which tests key presence independent of value.
	Frontmatter map[string]interface{}

	// Now anchors now()/today() and relative date parsing.
	// The zero value means time.Now().
	Now time.Time

	// Diag, when set, receives diagnostics for recovered soft failures
	// such as an unparseable date() argument.
	Diag func(format string, args ...interface{})
}

func (ctx *Context) now() time.Time {
	if ctx.Now.IsZero() {
		return time.Now()
	}
	return ctx.Now
}

func (ctx *Context) diagf(format string, args ...interface{}) {
	if ctx.Diag != nil {
		ctx.Diag(format, args...)
	}
}

// parseCache memoizes parsed ASTs by expression text. Expressions repeat
// across every note in a query, so parsing each one once is the cheap win.
var parseCache sync.Map // string -> Node

// Compile parses an expression, reusing a previously parsed AST when the
// same text was seen before.
func Compile(input string) (Node, error) {
	if cached, ok := parseCache.Load(input); ok {
		return cached.(Node), nil
	}
	node, err := Parse(input)
	if err != nil {
		return nil, &EvalError{Expr: input, Cause: err}
	}
	parseCache.Store(input, node)
	return node, nil
}

// Evaluate parses and evaluates a single expression against a context.
func Evaluate(input string, ctx *Context) (interface{}, error) {
	node, err := Compile(input)
	if err != nil {
		return nil, err
	}
	v, err := eval(node, ctx)
	if err != nil {
		return nil, &EvalError{Expr: input, Cause: err}
	}
	return v, nil
}

// ResolvePath resolves a dotted property path like "file.name",
// "formula.total" or "status" against a context, without going through the
// full expression grammar. Used by projection and sorting.
func ResolvePath(path string, ctx *Context) interface{} {
	parts := strings.Split(strings.TrimSpace(path), ".")
	v, _ := evalPath(&Path{Parts: parts}, ctx)
	return v
}

func eval(node Node, ctx *Context) (interface{}, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil

	case *Path:
		return evalPath(n, ctx)

	case *List:
		items := make([]interface{}, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := eval(item, ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	case *Unary:
		return evalUnary(n, ctx)

	case *Binary:
		return evalBinary(n, ctx)

	case *Call:
		return evalCall(n, ctx)

	default:
		return nil, fmt.Errorf("unknown node type %T", node)
	}
}

// evalPath resolves a property path. A missing property is null, never an
// error: documents with heterogeneous frontmatter are the normal case.
func evalPath(p *Path, ctx *Context) (interface{}, error) {
	parts := p.Parts

	var cur interface{}
	switch parts[0] {
	case "file":
		if len(parts) == 1 {
			return ctx.File.Map(), nil
		}
		cur = ctx.File.Get(parts[1])
		parts = parts[2:]
	case "note":
		if len(parts) == 1 {
			return ctx.Note, nil
		}
		cur = lookup(ctx.Note, parts[1])
		parts = parts[2:]
	case "formula":
		if len(parts) == 1 {
			return ctx.Formula, nil
		}
		cur = lookup(ctx.Formula, parts[1])
		parts = parts[2:]
	default:
		// Bare identifiers resolve against the note properties first.
		cur = lookup(ctx.Note, parts[0])
		parts = parts[1:]
	}

	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, nil
		}
		cur = lookup(m, part)
	}
	return cur, nil
}

func lookup(m map[string]interface{}, key string) interface{} {
	if m == nil {
		return nil
	}
	return m[key]
}

func evalUnary(n *Unary, ctx *Context) (interface{}, error) {
	v, err := eval(n.X, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpNot:
		return !Truthy(v), nil
	case OpNeg:
		f, ok := toNumber(v)
		if !ok {
			return nil, fmt.Errorf("cannot negate %v", v)
		}
		return -f, nil
	default:
		return nil, fmt.Errorf("unknown unary operator")
	}
}

func evalBinary(n *Binary, ctx *Context) (interface{}, error) {
	// Boolean operators short-circuit.
	if n.Op == OpAnd || n.Op == OpOr {
		left, err := eval(n.Left, ctx)
		if err != nil {
			return nil, err
		}
		if n.Op == OpAnd && !Truthy(left) {
			return false, nil
		}
		if n.Op == OpOr && Truthy(left) {
			return true, nil
		}
		right, err := eval(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	left, err := eval(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := eval(n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpEq:
		return Equals(left, right), nil
	case OpNeq:
		return !Equals(left, right), nil
	case OpLt, OpLte, OpGt, OpGte:
		// Null is not ordered: any ordering comparison against it is false.
		if left == nil || right == nil {
			return false, nil
		}
		cmp := Compare(left, right)
		switch n.Op {
		case OpLt:
			return cmp < 0, nil
		case OpLte:
			return cmp <= 0, nil
		case OpGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case OpAdd:
		return evalAdd(left, right)
	case OpSub, OpMul, OpDiv, OpMod:
		return evalArithmetic(n.Op, left, right)
	default:
		return nil, fmt.Errorf("unknown operator %s", n.Op)
	}
}

// evalAdd adds numbers, or concatenates when either operand is a string.
func evalAdd(left, right interface{}) (interface{}, error) {
	_, leftIsStr := left.(string)
	_, rightIsStr := right.(string)
	if leftIsStr || rightIsStr {
		return Stringify(left) + Stringify(right), nil
	}

	lf, lok := toNumber(left)
	rf, rok := toNumber(right)
	if lok && rok {
		return lf + rf, nil
	}
	return nil, fmt.Errorf("cannot add %v and %v", left, right)
}

func evalArithmetic(op BinaryOp, left, right interface{}) (interface{}, error) {
	lf, lok := toNumber(left)
	rf, rok := toNumber(right)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %s requires numbers, got %v and %v", op, left, right)
	}
	switch op {
	case OpSub:
		return lf - rf, nil
	case OpMul:
		return lf * rf, nil
	case OpDiv:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case OpMod:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(int64(lf) % int64(rf)), nil
	default:
		return nil, fmt.Errorf("unknown arithmetic operator %s", op)
	}
}
