package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcpforge/internal/pulse"
)

var (
	discoverQuery string
	discoverCount int
	discoverOut   string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List MCP servers from the PulseMCP registry",
	Long: `Queries the PulseMCP registry and either prints the matching servers
or, with --out, writes a servers.yaml usable by "generate --servers".`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverQuery, "query", "q", "", "search query")
	discoverCmd.Flags().IntVarP(&discoverCount, "count", "c", 20, "number of servers to fetch")
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "", "write results as a servers.yaml file")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cli := pulse.NewClient("")
	servers, err := cli.ListServers(cmd.Context(), discoverQuery, discoverCount, 0)
	if err != nil {
		return err
	}

	if discoverOut != "" {
		entries := make([]ServerEntry, 0, len(servers))
		for _, srv := range servers {
			if srv.SourceCodeURL == "" {
				continue
			}
			entries = append(entries, ServerEntry{Name: srv.Name, Repository: srv.SourceCodeURL})
		}
		if len(entries) == 0 {
			return fmt.Errorf("no servers with a source repository found")
		}
		if err := writeServerList(discoverOut, entries); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d servers to %s\n", len(entries), discoverOut)
		return nil
	}

	for _, srv := range servers {
		repo := srv.SourceCodeURL
		if repo == "" {
			repo = "(no source repository)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", srv.Name, repo)
	}
	return nil
}
