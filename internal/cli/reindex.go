package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/index"
	"github.com/aidanlsb/magpie/internal/ui"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the metadata index",
	Long: `Walks all markdown files in the vault and rebuilds the metadata index.

The index caches derived tags and links per note, keyed by modification
time, so queries don't reparse unchanged files. It is disposable: stale
or missing entries are rederived on demand, and reindexing never loses
data.

Only one reindex may run against a vault at a time.

Examples:
  # Rebuild the index for the default vault
  mgp reindex

  # Rebuild a specific vault
  mgp reindex --vault-path /path/to/vault`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultPath := getVaultPath()

		lock, err := index.AcquireRebuildLock(vaultPath)
		if err != nil {
			if errors.Is(err, index.ErrLocked) {
				return handleErrorMsg(ErrIndexLocked, "another reindex is already running", "Wait for it to finish and retry")
			}
			return handleError(ErrDatabaseError, err, "")
		}
		defer lock.Release()

		v, idx, err := openVault(vaultPath)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer idx.Close()

		if !jsonOutput {
			fmt.Printf("Reindexing vault: %s\n", ui.FilePath(vaultPath))
		}

		var spinner *ui.Spinner
		if !jsonOutput {
			spinner = ui.NewSpinner("Indexing files")
			spinner.Start()
		}

		count, err := v.Rebuild(cmd.Context())

		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"files_indexed": count,
			}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Indexed %d files", count))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
