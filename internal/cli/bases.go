package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/base"
	"github.com/aidanlsb/magpie/internal/ui"
)

var basesCmd = &cobra.Command{
	Use:   "bases",
	Short: "List base files in the vault",
	Long: `List the .base files discovered in the vault, as paths relative to
the vault root. Hidden directories are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := base.Discover(getVaultPath())
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{"bases": found}, &Meta{Total: len(found)})
			return nil
		}

		if len(found) == 0 {
			fmt.Println(ui.Hint("no base files found"))
			return nil
		}
		list := ui.NewList()
		for _, path := range found {
			list.Add(ui.FilePath(path))
		}
		fmt.Print(list.String())
		fmt.Println(ui.Hint(ui.Count(len(found), "base", "bases")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(basesCmd)
}
