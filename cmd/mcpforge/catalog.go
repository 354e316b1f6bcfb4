package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcpforge/internal/catalog"
	"mcpforge/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect generated descriptors",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		store := catalog.NewFromEnv(cfg.Catalog)
		defer store.Close()
		entries, err := store.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			status := "untested"
			if e.Passed {
				status = "passed"
			} else if e.Iterations > 0 {
				status = "failed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-8s %s\n", e.Name, status, e.Repository)
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		store := catalog.NewFromEnv(cfg.Catalog)
		defer store.Close()
		entry, ok, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no catalog entry named %q", args[0])
		}
		fmt.Fprint(cmd.OutOrStdout(), entry.Manifest)
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
