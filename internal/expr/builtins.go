package expr

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aidanlsb/magpie/internal/dates"
	"github.com/aidanlsb/magpie/internal/wikilink"
)

// builtin is the signature of a built-in function. Arguments are already
// evaluated; builtins compute pure values over them and the context.
type builtin func(ctx *Context, args []interface{}) (interface{}, error)

// builtins is the fixed function table. Expressions can call nothing else.
var builtins = map[string]builtin{
	"date":   builtinDate,
	"now":    builtinNow,
	"today":  builtinToday,
	"number": builtinNumber,
	"string": builtinString,
	"iff":    builtinChoice,
	"choice": builtinChoice,
	"min":    builtinMin,
	"max":    builtinMax,
	"abs":    builtinAbs,
	"round":  builtinRound,
	"list":   builtinList,

	// File-scoped predicates, addressed as file.<fn>(...).
	"file.hasTag":      builtinHasTag,
	"file.inFolder":    builtinInFolder,
	"file.hasLink":     builtinHasLink,
	"file.hasProperty": builtinHasProperty,
}

func evalCall(n *Call, ctx *Context) (interface{}, error) {
	fn, ok := builtins[n.Name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", n.Name)
	}

	args := make([]interface{}, 0, len(n.Args))
	for _, argNode := range n.Args {
		v, err := eval(argNode, ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return fn(ctx, args)
}

func arity(args []interface{}, min, max int, name string) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return fmt.Errorf("%s: wrong number of arguments (%d)", name, len(args))
	}
	return nil
}

// builtinDate parses a string into a date, or passes a date through.
// Unparseable input yields null with a diagnostic, not an error: one bad
// value in one note must not fail a filter over the whole vault.
func builtinDate(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "date"); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case string:
		t, err := dates.ParseAny(v, ctx.now())
		if err != nil {
			ctx.diagf("date(%q): %v", v, err)
			return nil, nil
		}
		return t, nil
	default:
		ctx.diagf("date(%v): not a date or string", v)
		return nil, nil
	}
}

func builtinNow(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 0, 0, "now"); err != nil {
		return nil, err
	}
	return ctx.now(), nil
}

func builtinToday(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 0, 0, "today"); err != nil {
		return nil, err
	}
	return dates.Midnight(ctx.now()), nil
}

func builtinNumber(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "number"); err != nil {
		return nil, err
	}
	if args[0] == nil {
		return nil, nil
	}
	if f, ok := toNumber(args[0]); ok {
		return f, nil
	}
	ctx.diagf("number(%v): not numeric", args[0])
	return nil, nil
}

func builtinString(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "string"); err != nil {
		return nil, err
	}
	return Stringify(args[0]), nil
}

// builtinChoice is the ternary equivalent: iff(cond, a, b) / choice(cond, a, b).
func builtinChoice(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 3, 3, "choice"); err != nil {
		return nil, err
	}
	if Truthy(args[0]) {
		return args[1], nil
	}
	return args[2], nil
}

func builtinMin(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, -1, "min"); err != nil {
		return nil, err
	}
	return pickExtreme(args, -1), nil
}

func builtinMax(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, -1, "max"); err != nil {
		return nil, err
	}
	return pickExtreme(args, 1), nil
}

// pickExtreme returns the smallest (dir=-1) or largest (dir=1) non-null
// argument under Compare semantics.
func pickExtreme(args []interface{}, dir int) interface{} {
	var best interface{}
	for _, v := range args {
		if v == nil {
			continue
		}
		if best == nil || Compare(v, best)*dir > 0 {
			best = v
		}
	}
	return best
}

func builtinAbs(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "abs"); err != nil {
		return nil, err
	}
	f, ok := toNumber(args[0])
	if !ok {
		return nil, fmt.Errorf("abs: not a number: %v", args[0])
	}
	return math.Abs(f), nil
}

func builtinRound(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 2, "round"); err != nil {
		return nil, err
	}
	f, ok := toNumber(args[0])
	if !ok {
		return nil, fmt.Errorf("round: not a number: %v", args[0])
	}
	digits := 0.0
	if len(args) == 2 {
		d, ok := toNumber(args[1])
		if !ok {
			return nil, fmt.Errorf("round: digits not a number: %v", args[1])
		}
		digits = d
	}
	scale := math.Pow(10, digits)
	return math.Round(f*scale) / scale, nil
}

// builtinList wraps a non-list value in a singleton list. Null becomes the
// empty list, lists pass through.
func builtinList(_ *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "list"); err != nil {
		return nil, err
	}
	return ToList(args[0]), nil
}

// ToList coerces a value to a list.
func ToList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	default:
		return []interface{}{v}
	}
}

// normalizeTag lowercases a tag and strips any leading '#'.
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// builtinHasTag reports whether the note has any of the given tags.
// Tags match with or without a leading '#', case-insensitively.
func builtinHasTag(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, -1, "file.hasTag"); err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(ctx.File.Tags))
	for _, tag := range ctx.File.Tags {
		have[normalizeTag(tag)] = struct{}{}
	}
	for _, arg := range args {
		want, ok := arg.(string)
		if !ok {
			continue
		}
		if _, found := have[normalizeTag(want)]; found {
			return true, nil
		}
	}
	return false, nil
}

// builtinInFolder reports whether the note lives in the given folder or a
// subfolder of it. Matching is a prefix match on the slash-normalized path.
func builtinInFolder(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "file.inFolder"); err != nil {
		return nil, err
	}
	want, ok := args[0].(string)
	if !ok {
		return false, nil
	}
	want = strings.Trim(strings.ReplaceAll(want, "\\", "/"), "/")
	if want == "" {
		return true, nil
	}
	folder := ctx.File.Folder
	return folder == want || strings.HasPrefix(folder, want+"/"), nil
}

// builtinHasLink reports whether the note links to the given target.
// [[bracket]] syntax and a trailing .md on either side are ignored.
func builtinHasLink(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "file.hasLink"); err != nil {
		return nil, err
	}
	raw, ok := args[0].(string)
	if !ok {
		return false, nil
	}
	want := strings.TrimSuffix(wikilink.Strip(raw), ".md")
	for _, link := range ctx.File.Links {
		if strings.TrimSuffix(wikilink.Strip(link), ".md") == want {
			return true, nil
		}
	}
	return false, nil
}

// builtinHasProperty tests key presence in the raw frontmatter,
// independent of whether the value is null.
func builtinHasProperty(ctx *Context, args []interface{}) (interface{}, error) {
	if err := arity(args, 1, 1, "file.hasProperty"); err != nil {
		return nil, err
	}
	name, ok := args[0].(string)
	if !ok {
		return false, nil
	}
	_, present := ctx.Frontmatter[name]
	return present, nil
}
