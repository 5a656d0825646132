package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aidanlsb/magpie/internal/wikilink"
)

// tagRegex matches inline #tags. A tag starts with '#' followed by a
// letter, and may contain letters, digits, '-', '_' and '/'.
var tagRegex = regexp.MustCompile(`#([A-Za-z][A-Za-z0-9_/-]*|[0-9]{4})`)

// ExtractTags extracts inline #tags from markdown body content.
// Code blocks and code spans are skipped by walking the goldmark AST and
// only scanning plain text nodes. Returned tags have no leading '#' and
// are deduplicated in first-seen order.
func ExtractTags(body string) []string {
	var tags []string
	seen := make(map[string]struct{})

	walkTextNodes(body, func(s string) {
		for _, m := range tagRegex.FindAllStringSubmatch(s, -1) {
			tag := m[1]
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	})

	return tags
}

// ExtractLinks extracts outgoing link targets from markdown body content:
// [[wikilinks]] plus standard markdown link destinations. Targets are
// deduplicated and sorted for stable output.
//
// Wikilinks are scanned over the raw body rather than the AST because
// goldmark fragments the surrounding [[ ]] brackets across text nodes.
func ExtractLinks(body string) []string {
	seen := make(map[string]struct{})

	for _, m := range wikilink.FindAll(body) {
		seen[m.Target] = struct{}{}
	}

	source := []byte(body)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			dest := strings.TrimSpace(string(link.Destination))
			if dest != "" && !strings.Contains(dest, "://") {
				seen[dest] = struct{}{}
			}
		}
		return ast.WalkContinue, nil
	})

	if len(seen) == 0 {
		return nil
	}
	links := make([]string, 0, len(seen))
	for target := range seen {
		links = append(links, target)
	}
	sort.Strings(links)
	return links
}

// walkTextNodes parses body as markdown and calls fn with the text of each
// plain text node, skipping code blocks and code spans.
func walkTextNodes(body string, fn func(string)) {
	source := []byte(body)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			fn(string(n.(*ast.Text).Segment.Value(source)))
		}
		return ast.WalkContinue, nil
	})
}
