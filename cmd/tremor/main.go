// Command tremor is the thin CLI shell around the core packages:
// `run` drives a single script over a file of events, `server run`
// hosts compiled pipeline artefacts behind a status/metrics endpoint,
// `dbg` inspects the compiler's intermediate representations,
// `completions` generates a shell completion script, and `test` is a
// documented stub (spec.md §6 CLI supplement).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "tremor",
		Short: "tremor event processing runtime",
	}
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newServerCommand())
	rootCmd.AddCommand(newDbgCommand())
	rootCmd.AddCommand(newTestCommand())
	rootCmd.AddCommand(newCompletionsCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
