// Command treasuryctl is the command-line front end for a treasury: create
// or update a treasury's importer set, store a source under an importer,
// and fetch a stored asset's native bytes back out.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relicware/treasury/pkg/log"
)

var (
	rootFlag    string
	verboseFlag int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorChain(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "treasuryctl",
		Short:         "Manage a treasury: create, update, store, and fetch assets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(func() {
		log.Init(log.Config{Level: log.LevelFromVerbosity(verboseFlag)})
	})

	root.PersistentFlags().StringVarP(&rootFlag, "root", "r", ".", "treasury root directory")
	root.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "increase verbosity (repeatable, up to -vvv)")

	root.AddCommand(newCreateCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newStoreCmd())
	root.AddCommand(newFetchCmd())

	return root
}

// formatErrorChain prints err and every error it wraps, one per line, so a
// user sees the full cause chain instead of just the outermost message.
func formatErrorChain(err error) string {
	out := "Error: " + err.Error()
	for {
		unwrapped := unwrap(err)
		if unwrapped == nil {
			return out
		}
		out += "\n  caused by: " + unwrapped.Error()
		err = unwrapped
	}
}

func unwrap(err error) error {
	type wrapper interface{ Unwrap() error }
	if w, ok := err.(wrapper); ok {
		return w.Unwrap()
	}
	return nil
}
