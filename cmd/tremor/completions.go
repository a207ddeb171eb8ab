package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCompletionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "completions {bash,zsh,fish,powershell}",
		Short:     "generate a shell completion script",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletion(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
