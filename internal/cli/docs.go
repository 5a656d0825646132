package cli

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/docs"
	"github.com/aidanlsb/magpie/internal/ui"
)

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the bundled documentation",
	Long: `Read the long-form documentation bundled with the binary.

Without arguments, lists available topics. With a topic name, prints
that document, rendered for the terminal when stdout is a TTY.

Examples:
  mgp docs
  mgp docs expressions
  mgp docs base-files --raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().Bool("raw", false, "Print raw markdown without rendering")
}

func runDocs(cmd *cobra.Command, args []string) error {
	topics, err := docTopics()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	if len(args) == 0 {
		if jsonOutput {
			outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Total: len(topics)})
			return nil
		}
		fmt.Println(ui.Header("Topics"))
		list := ui.NewList()
		for _, t := range topics {
			list.Add(ui.Accent.Render(t))
		}
		fmt.Print(list.String())
		fmt.Println(ui.Hint("mgp docs <topic> to read one"))
		return nil
	}

	topic := strings.TrimSuffix(args[0], ".md")
	content, err := fs.ReadFile(docs.FS, "guide/"+topic+".md")
	if err != nil {
		return handleErrorMsg(ErrInvalidInput,
			fmt.Sprintf("unknown topic %q (available: %s)", topic, strings.Join(topics, ", ")),
			"Run 'mgp docs' to list topics")
	}

	if jsonOutput {
		outputSuccess(map[string]interface{}{
			"topic":   topic,
			"content": string(content),
		}, nil)
		return nil
	}

	raw, _ := cmd.Flags().GetBool("raw")
	if !raw && isatty.IsTerminal(os.Stdout.Fd()) {
		rendered, err := ui.RenderMarkdown(string(content), ui.NewDisplayContext().AvailableWidth(0))
		if err == nil {
			fmt.Print(rendered)
			return nil
		}
	}
	fmt.Print(string(content))
	return nil
}

func docTopics() ([]string, error) {
	entries, err := fs.ReadDir(docs.FS, "guide")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			topics = append(topics, strings.TrimSuffix(e.Name(), ".md"))
		}
	}
	sort.Strings(topics)
	return topics, nil
}
