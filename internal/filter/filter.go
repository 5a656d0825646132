// Package filter evaluates boolean filter trees against a note's
// evaluation context.
//
// A filter is either a string leaf (an expression) or a combinator node
// holding a list of sub-filters:
//
//	and: [f...]  true iff every sub-filter matches (empty list is true)
//	or:  [f...]  true iff any sub-filter matches (empty list is false)
//	not: [f...]  true iff none of the sub-filters match
//
// Note that not takes a list and negates the conjunction of matches:
// `not: [a, b]` is true only when neither a nor b matches. This is the
// documented behavior, not the more common "negate a single filter".
//
// A leaf that fails to evaluate counts as false: a malformed filter
// excludes notes, it never silently matches everything.
package filter

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/expr"
)

// Node is one node of a filter tree.
type Node struct {
	// Expr is the leaf expression. Set only for leaves.
	Expr string

	// Exactly one of And/Or/Not is non-nil for combinator nodes.
	And []*Node
	Or  []*Node
	Not []*Node
}

// IsLeaf reports whether the node is a string leaf.
func (n *Node) IsLeaf() bool {
	return n != nil && n.And == nil && n.Or == nil && n.Not == nil
}

// UnmarshalYAML decodes either a scalar string leaf or a single-key
// mapping with and/or/not lists.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		n.Expr = s
		return nil

	case yaml.MappingNode:
		var m map[string][]*Node
		if err := value.Decode(&m); err != nil {
			return err
		}
		if len(m) != 1 {
			return fmt.Errorf("filter combinator must have exactly one of and/or/not, got %d keys", len(m))
		}
		for key, children := range m {
			switch key {
			case "and":
				n.And = children
				if n.And == nil {
					n.And = []*Node{}
				}
			case "or":
				n.Or = children
				if n.Or == nil {
					n.Or = []*Node{}
				}
			case "not":
				n.Not = children
				if n.Not == nil {
					n.Not = []*Node{}
				}
			default:
				return fmt.Errorf("unknown filter combinator %q", key)
			}
		}
		return nil

	default:
		return fmt.Errorf("filter must be a string or an and/or/not mapping")
	}
}

// Matches evaluates a filter tree against a context. A nil filter matches
// everything (no filtering applied).
func Matches(n *Node, ctx *expr.Context) bool {
	if n == nil {
		return true
	}

	switch {
	case n.And != nil:
		for _, child := range n.And {
			if !Matches(child, ctx) {
				return false
			}
		}
		return true

	case n.Or != nil:
		for _, child := range n.Or {
			if Matches(child, ctx) {
				return true
			}
		}
		return false

	case n.Not != nil:
		for _, child := range n.Not {
			if Matches(child, ctx) {
				return false
			}
		}
		return true

	default:
		v, err := expr.Evaluate(n.Expr, ctx)
		if err != nil {
			// Fails closed. The diagnostic goes through the context hook
			// so the pipeline can surface it.
			if ctx.Diag != nil {
				ctx.Diag("filter %q: %v", n.Expr, err)
			}
			return false
		}
		return expr.Truthy(v)
	}
}

// Leaf builds a string-leaf filter node. Convenience for tests and
// programmatic construction.
func Leaf(expression string) *Node {
	return &Node{Expr: expression}
}
