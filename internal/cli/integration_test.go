package cli_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/magpie/internal/testutil"
)

func projectsVault(t *testing.T) *testutil.TestVault {
	t.Helper()
	return testutil.NewTestVault(t).
		WithNote("website.md", "status: open\npriority: 3\n", "Redesign the site.\n").
		WithNote("garden.md", "status: open\npriority: 1\n", "Plant tomatoes.\n").
		WithNote("attic.md", "status: archived\npriority: 5\n", "Done years ago.\n").
		WithBase("projects", testutil.ProjectsBase()).
		Build()
}

func TestQueryFiltersAndSorts(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("query", "projects", "open").MustSucceed(t)
	res.AssertNoWarnings(t)
	res.AssertResultCount(t, "notes", 2)

	if res.Meta == nil || res.Meta.Total != 2 {
		t.Fatalf("expected total 2, got %+v", res.Meta)
	}

	notes := res.DataList("notes")
	first, ok := notes[0].(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected note shape: %T", notes[0])
	}
	// priority desc puts website (3) before garden (1).
	if first["path"] != "website.md" {
		t.Errorf("expected website.md first, got %v", first["path"])
	}

	props, _ := first["properties"].(map[string]interface{})
	if props["formula.double"] != float64(6) {
		t.Errorf("formula.double = %v", props["formula.double"])
	}
}

func TestQueryLimitKeepsTotal(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("query", "projects", "open", "--limit", "1").MustSucceed(t)
	res.AssertResultCount(t, "notes", 1)
	if res.Meta == nil || res.Meta.Total != 2 {
		t.Fatalf("limit must not change total, got %+v", res.Meta)
	}
}

func TestQueryDefaultsToFirstView(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("query", "projects").MustSucceed(t)
	if got := res.DataString("view"); got != "open" {
		t.Errorf("expected first view, got %q", got)
	}
}

func TestQueryIncludesContentOnRequest(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("query", "projects", "open").MustSucceed(t)
	notes := res.DataList("notes")
	if note := notes[0].(map[string]interface{}); note["content"] != nil {
		t.Errorf("content should be omitted by default, got %v", note["content"])
	}

	res = v.RunCLI("query", "projects", "open", "--content").MustSucceed(t)
	notes = res.DataList("notes")
	note := notes[0].(map[string]interface{})
	content, _ := note["content"].(string)
	if !strings.Contains(content, "Redesign the site.") {
		t.Errorf("content = %q", content)
	}
}

func TestQueryUnknownView(t *testing.T) {
	v := projectsVault(t)
	v.RunCLI("query", "projects", "nope").MustFail(t, "VIEW_NOT_FOUND")
}

func TestQueryUnknownBase(t *testing.T) {
	v := projectsVault(t)
	v.RunCLI("query", "nope").MustFail(t, "BASE_NOT_FOUND")
}

func TestQueryInvalidBase(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithBase("broken", "views: []\n").
		Build()
	v.RunCLI("query", "broken").MustFail(t, "BASE_INVALID")
}

func TestQueryWarnsOnBrokenFormula(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithNote("a.md", "status: open\n", "body\n").
		WithBase("bad", `formulas:
  broken: "bogus(note.status)"
views:
  - name: main
    columns: [file.name, formula.broken]
`).
		Build()

	res := v.RunCLI("query", "bad").MustSucceed(t)
	res.AssertHasWarning(t, "EVAL_WARNING")
}

func TestViewsListsBaseViews(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("views", "projects").MustSucceed(t)
	if got := res.DataString("base"); got != "projects" {
		t.Errorf("base = %q", got)
	}
	views := res.DataList("views")
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	first := views[0].(map[string]interface{})
	if first["name"] != "open" || first["kind"] != "table" {
		t.Errorf("unexpected first view: %v", first)
	}
}

func TestBasesDiscovery(t *testing.T) {
	v := projectsVault(t)
	v.WriteFile("areas/home.base", testutil.ProjectsBase())

	res := v.RunCLI("bases").MustSucceed(t)
	bases := res.DataList("bases")
	if len(bases) != 2 {
		t.Fatalf("expected 2 bases, got %v", bases)
	}
	// Discovery is sorted.
	if bases[0] != "areas/home.base" || bases[1] != "projects.base" {
		t.Errorf("bases = %v", bases)
	}
}

func TestExportWritesFile(t *testing.T) {
	v := projectsVault(t)
	out := filepath.Join(v.Path, "out.csv")

	res := v.RunCLI("export", "projects", "open", "--format", "csv", "--out", out).MustSucceed(t)
	if got := res.DataString("file"); got != out {
		t.Errorf("file = %q", got)
	}
	if res.DataInt("notes_exported") != 2 {
		t.Errorf("notes_exported = %d", res.DataInt("notes_exported"))
	}

	content := v.ReadFile("out.csv")
	if !strings.HasPrefix(content, "file.name,status,priority,formula.double\n") {
		t.Errorf("unexpected header: %q", content)
	}
	if !strings.Contains(content, "website,open,3,6") {
		t.Errorf("missing row: %q", content)
	}
}

func TestExportStdout(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("export", "projects", "open", "--format", "csv", "--out", "-")
	// Raw CSV on stdout, no JSON envelope.
	lines := testutil.SplitLines(res.RawJSON)
	if len(lines) != 3 || lines[0] != "file.name,status,priority,formula.double" {
		t.Errorf("stdout = %q", res.RawJSON)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	v := projectsVault(t)
	v.RunCLI("export", "projects", "open", "--format", "xml").MustFail(t, "INVALID_INPUT")
}

func TestReindexCountsFiles(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("reindex").MustSucceed(t)
	if res.DataInt("files_indexed") != 3 {
		t.Errorf("files_indexed = %d", res.DataInt("files_indexed"))
	}
}

func TestDocsTopics(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("docs").MustSucceed(t)
	topics := res.DataList("topics")
	if len(topics) == 0 {
		t.Fatal("expected bundled topics")
	}

	res = v.RunCLI("docs", "expressions").MustSucceed(t)
	if !strings.Contains(res.DataString("content"), "file.hasTag") {
		t.Errorf("content = %q", res.DataString("content"))
	}

	v.RunCLI("docs", "nope").MustFail(t, "INVALID_INPUT")
}

func TestVersionReportsCapabilities(t *testing.T) {
	v := projectsVault(t)

	res := v.RunCLI("version").MustSucceed(t)
	if res.DataString("version") == "" {
		t.Error("version missing")
	}
	caps, _ := res.Data["capabilities"].([]interface{})
	found := false
	for _, c := range caps {
		if c == "index" {
			found = true
		}
	}
	if !found {
		t.Errorf("capabilities = %v", caps)
	}
}
