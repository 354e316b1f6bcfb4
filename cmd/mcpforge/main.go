package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mcpforge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mcpforge",
	Short: "Generate and validate MCP server descriptors",
	Long: `mcpforge clones an MCP server repository, analyzes it, asks an LLM to
describe each section of its deployment descriptor, and iterates the result
against a build-and-run test until it passes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
