package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "spn",
		Short:        "Tooling for the Sparkling scripting language",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newLexCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
