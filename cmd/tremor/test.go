package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newTestCommand is a documented thin stub: spec.md explicitly
// excludes a fixture-driven integration test harness from core scope,
// so `tremor test` only reports the shape of the command a full
// implementation would expose.
func newTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test [suite]",
		Short: "run a fixture-driven test suite (not implemented; out of core scope)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("tremor test: no fixture-driven test harness is bundled with the core runtime")
			return nil
		},
	}
}
