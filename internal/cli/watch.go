package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/formula"
	"github.com/aidanlsb/magpie/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and keep the index current",
	Long: `Watch the vault directory for file changes and update the metadata
index as notes are saved.

This runs in the foreground. The watcher:
- Monitors all .md files in the vault
- Debounces rapid changes (waits 100ms after last change)
- Ignores .magpie/, .git/, .trash/ directories
- Refreshes changed notes one at a time

Examples:
  # Watch the default vault
  mgp watch

  # Watch with debug output
  mgp watch --debug

  # Watch a specific vault
  mgp watch --vault-path /path/to/vault`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("debug", false, "Enable debug logging")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	vaultPath := getVaultPath()

	vaultCfg, err := loadVaultConfigSafe(vaultPath)
	if err != nil {
		return fmt.Errorf("failed to load vault config: %w", err)
	}

	v, idx, err := openVault(vaultPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	// Seed the index so the first queries after startup are warm.
	if vaultCfg.IsAutoIndexEnabled() {
		if count, err := v.Rebuild(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial index failed: %v\n", err)
		} else if debug {
			fmt.Printf("Indexed %d files\n", count)
		}
	}

	w, err := watcher.New(watcher.Config{
		Vault:    v,
		Formulas: formula.NewEngine(),
		Debug:    debug,
		OnRefresh: func(path string, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error refreshing %s: %v\n", path, err)
			} else if debug {
				fmt.Printf("Refreshed: %s\n", path)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down watcher...")
		cancel()
	}()

	fmt.Printf("Watching vault: %s\n", vaultPath)
	fmt.Println("Press Ctrl+C to stop")

	return w.Start(ctx)
}
