package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mcpforge/internal/manifest"
)

var testOracle string

var testCmd = &cobra.Command{
	Use:   "test <descriptor.yaml> <repo-dir>",
	Short: "Run the test oracle against an existing descriptor",
	Args:  cobra.ExactArgs(2),
	RunE:  runTest,
}

func init() {
	testCmd.Flags().StringVar(&testOracle, "oracle", "exec", "test oracle: exec or script:<command>")
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.DecodeYAML(raw)
	if err != nil {
		return err
	}
	ora, err := newOracle(testOracle)
	if err != nil {
		return err
	}
	if ora == nil {
		return fmt.Errorf("oracle %q cannot run tests", testOracle)
	}

	res, err := ora.Test(cmd.Context(), m, args[1])
	if err != nil {
		return err
	}
	if !res.Passed {
		fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n%s\n", m.Name, res.Output)
		return fmt.Errorf("descriptor did not pass")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "PASS %s\n", m.Name)
	return nil
}
