package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

// Flag and help text conventions, checked over the whole command tree so
// a new command can't ship without usage strings.

func TestCommandsHaveShortDescriptions(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Short == "" {
			t.Errorf("command %q has no short description", cmd.Name())
		}
	}
}

func TestFlagsHaveUsage(t *testing.T) {
	checkFlags := func(name string, fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Usage == "" {
				t.Errorf("%s: flag --%s has no usage string", name, f.Name)
			}
		})
	}

	checkFlags("root", rootCmd.PersistentFlags())
	for _, cmd := range rootCmd.Commands() {
		checkFlags(cmd.Name(), cmd.Flags())
	}
}
