package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/atomicfile"
	"github.com/aidanlsb/magpie/internal/engine"
	"github.com/aidanlsb/magpie/internal/export"
	"github.com/aidanlsb/magpie/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export <base> [view]",
	Short: "Export a base view to a file",
	Long: `Run one view of a base and write the results to a file.

The format defaults to the vault's default_export_format (csv unless
configured otherwise in magpie.yaml). The output path defaults to a
name derived from the base and view, e.g. projects-open-tasks.csv in
the current directory. Pass --out - to write to stdout.

Examples:
  # Export the first view of projects.base as CSV
  mgp export projects

  # Export a named view as JSON to a chosen file
  mgp export projects "Open projects" --format json --out open.json

  # Pipe a markdown table elsewhere
  mgp export projects --format markdown --out -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("format", "", "Export format: csv, json, markdown (default: vault config)")
	exportCmd.Flags().StringP("out", "o", "", "Output file path, or - for stdout")
	exportCmd.Flags().Int("limit", 0, "Override the view's result limit")
}

func runExport(cmd *cobra.Command, args []string) error {
	baseName := args[0]
	viewName := ""
	if len(args) == 2 {
		viewName = args[1]
	}
	formatFlag, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	limit, _ := cmd.Flags().GetInt("limit")

	vaultCfg, err := loadVaultConfigSafe(getVaultPath())
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix magpie.yaml and try again")
	}

	if formatFlag == "" {
		formatFlag = vaultCfg.GetDefaultExportFormat()
	}
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return handleError(ErrInvalidInput, err, "Use csv, json or markdown")
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
	rs, warnings, err := runner.Run(cmd.Context(), b, viewName, engine.Options{Limit: limit})
	if err != nil {
		if errors.Is(err, engine.ErrViewNotFound) {
			return handleError(ErrViewNotFound, err, fmt.Sprintf("Run 'mgp views %s' to list views", baseName))
		}
		return handleError(ErrQueryFailed, err, "")
	}

	view, _ := b.View(viewName)
	content, err := export.Render(rs, format, view.Columns)
	if err != nil {
		return handleError(ErrExportFailed, err, "")
	}

	// - writes the raw export to stdout, even in JSON mode: the export
	// itself is the machine-readable payload.
	if outPath == "-" {
		fmt.Print(content)
		return nil
	}

	if outPath == "" {
		outPath = export.Filename(b.Name, view.Name, format)
	}
	if err := atomicfile.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if jsonOutput {
		outputSuccessWithWarnings(map[string]interface{}{
			"file":           outPath,
			"format":         string(format),
			"notes_exported": len(rs.Notes),
		}, cliWarnings(warnings), &Meta{Total: rs.Total})
		return nil
	}

	fmt.Println(ui.Successf("Exported %d notes to %s", len(rs.Notes), ui.FilePath(outPath)))
	return nil
}
