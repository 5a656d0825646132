package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/ui"
)

var viewsCmd = &cobra.Command{
	Use:   "views <base>",
	Short: "List the views of a base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBase(args[0])
		if err != nil {
			return handleError(baseErrorCode(err), err, "Run 'mgp bases' to list available bases")
		}

		if jsonOutput {
			views := make([]ViewInfo, 0, len(b.Views))
			for _, v := range b.Views {
				views = append(views, ViewInfo{
					Name:    v.Name,
					Kind:    string(v.Kind),
					Limit:   v.Limit,
					Columns: v.Columns,
				})
			}
			outputSuccess(map[string]interface{}{
				"base":  b.Name,
				"views": views,
			}, &Meta{Total: len(views)})
			return nil
		}

		fmt.Println(ui.Header(b.Name))
		tbl := ui.NewTable(3)
		for _, v := range b.Views {
			detail := ""
			if len(v.Columns) > 0 {
				detail = strings.Join(v.Columns, ", ")
			}
			if v.Limit > 0 {
				if detail != "" {
					detail += " "
				}
				detail += fmt.Sprintf("(limit %d)", v.Limit)
			}
			tbl.AddRow(ui.Accent.Render(v.Name), string(v.Kind), ui.Hint(detail))
		}
		fmt.Print(tbl.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}
