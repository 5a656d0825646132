package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/base"
	"github.com/aidanlsb/magpie/internal/engine"
	"github.com/aidanlsb/magpie/internal/export"
	"github.com/aidanlsb/magpie/internal/model"
	"github.com/aidanlsb/magpie/internal/ui"
)

var queryCmd = &cobra.Command{
	Use:     "query <base> [view]",
	Aliases: []string{"q"},
	Short:   "Run a base view against the vault",
	Long: `Run one view of a base file and print the matching notes.

The base name is resolved relative to the vault root, with or without
the .base extension. When no view is named, the base's first view runs.

Examples:
  # Run the first view of projects.base
  mgp query projects

  # Run a named view
  mgp query projects "Open projects"

  # Override the view's limit and include note bodies
  mgp query projects --limit 5 --content

  # Force a render format regardless of the view's kind
  mgp query projects --format csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("format", "", "Output format: table, list, cards, csv, json, markdown (default: the view's kind)")
	queryCmd.Flags().Int("limit", 0, "Override the view's result limit")
	queryCmd.Flags().Bool("content", false, "Include note bodies in the results")
}

func runQuery(cmd *cobra.Command, args []string) error {
	baseName := args[0]
	viewName := ""
	if len(args) == 2 {
		viewName = args[1]
	}
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")
	content, _ := cmd.Flags().GetBool("content")

	vaultCfg, err := loadVaultConfigSafe(getVaultPath())
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix magpie.yaml and try again")
	}

	b, err := loadBase(baseName)
	if err != nil {
		return handleError(baseErrorCode(err), err, "Run 'mgp bases' to list available bases")
	}

	v, idx, err := openVault(getVaultPath())
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer idx.Close()

	runner := newRunner(v, vaultCfg)

	start := time.Now()
	rs, warnings, err := runner.Run(cmd.Context(), b, viewName, engine.Options{
		Limit:          limit,
		IncludeContent: content,
	})
	if err != nil {
		if errors.Is(err, engine.ErrViewNotFound) {
			return handleError(ErrViewNotFound, err, fmt.Sprintf("Run 'mgp views %s' to list views", baseName))
		}
		return handleError(ErrQueryFailed, err, "")
	}
	elapsed := time.Since(start).Milliseconds()

	if jsonOutput {
		outputSuccessWithWarnings(buildQueryData(b, rs), cliWarnings(warnings), &Meta{
			Total:       rs.Total,
			QueryTimeMs: elapsed,
		})
		return nil
	}

	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, ui.Warningf("%s: %s", w.Path, w.Message))
	}

	view, _ := b.View(viewName)
	return renderResults(rs, view, format)
}

// renderResults prints a result set for human consumption. An empty
// format falls back to the view's declared kind.
func renderResults(rs *model.ResultSet, view *base.View, format string) error {
	if format == "" {
		format = string(view.Kind)
	}

	switch format {
	case "table":
		fmt.Print(ui.RenderResultsTable(ui.NewDisplayContext(), rs, displayColumns(view, rs)))
	case "list":
		fmt.Print(ui.RenderResultsList(rs))
	case "cards":
		fmt.Print(ui.RenderResultsCards(rs, displayColumns(view, rs)))
	case "csv", "json", "markdown", "md":
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		out, err := export.Render(rs, f, view.Columns)
		if err != nil {
			return err
		}
		if f == export.FormatMarkdown && isatty.IsTerminal(os.Stdout.Fd()) {
			rendered, err := ui.RenderMarkdown(out, ui.NewDisplayContext().AvailableWidth(0))
			if err == nil {
				out = rendered
			}
		}
		fmt.Print(out)
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected table, list, cards, csv, json or markdown)", format)
	}

	fmt.Println()
	shown := len(rs.Notes)
	if shown < rs.Total {
		fmt.Println(ui.Hint(fmt.Sprintf("showing %d of %d results", shown, rs.Total)))
	} else {
		fmt.Println(ui.Hint(ui.Count(rs.Total, "result", "results")))
	}
	return nil
}
