package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mcpforge/internal/artifact"
	"mcpforge/internal/config"
	"mcpforge/internal/llm"
	"mcpforge/internal/oracle"
)

// batchSize bounds concurrent repositories in batch mode.
const batchSize = 5

var (
	genRepo      string
	genBranch    string
	genServers   string
	genOut       string
	genOracle    string
	genForceFrom string
	genProvider  string
	genModel     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a descriptor for one repository or a server list",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genRepo, "repo", "r", "", "repository URL to describe")
	generateCmd.Flags().StringVarP(&genBranch, "branch", "b", "", "branch to clone (default: remote default)")
	generateCmd.Flags().StringVarP(&genServers, "servers", "s", "", "servers.yaml listing repositories for batch mode")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "out", "directory for generated descriptors")
	generateCmd.Flags().StringVar(&genOracle, "oracle", "exec", "test oracle: exec, none or script:<command>")
	generateCmd.Flags().StringVar(&genForceFrom, "force-from", "", "re-run the named section and invalidate downstream caches")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "LLM provider: gemini, groq or fake")
	generateCmd.Flags().StringVar(&genModel, "model", "", "model name")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genRepo == "" && genServers == "" {
		return fmt.Errorf("either --repo or --servers is required")
	}

	cfg := config.FromEnv()
	if genProvider != "" {
		cfg.Provider = genProvider
	}
	if genModel != "" {
		cfg.Model = genModel
	}

	ctx := cmd.Context()
	cli, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer cli.Close()

	store, err := newArtifactStore(cfg)
	if err != nil {
		return err
	}
	ora, err := newOracle(genOracle)
	if err != nil {
		return err
	}

	if genRepo != "" {
		return generateAndReport(cmd, cfg, cli, store, ora, "", genRepo, genBranch)
	}

	servers, err := readServerList(genServers)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)
	for _, srv := range servers {
		g.Go(func() error {
			m, out, err := generateOne(gctx, cfg, cli, store, ora, srv.Name, srv.Repository, srv.Branch, genForceFrom)
			if err != nil {
				// One broken repository must not sink the batch.
				log.Printf("generate %s: %v", srv.Repository, err)
				return nil
			}
			path, err := writeDescriptor(genOut, m)
			if err != nil {
				return err
			}
			saveToCatalog(cfg, m, out)
			log.Printf("generate %s: wrote %s (passed=%v)", m.Name, path, out == nil || out.Passed)
			return nil
		})
	}
	return g.Wait()
}

func generateAndReport(cmd *cobra.Command, cfg config.Config, cli llm.Client, store artifact.Store, ora oracle.Oracle, name, repo, branch string) error {
	m, out, err := generateOne(cmd.Context(), cfg, cli, store, ora, name, repo, branch, genForceFrom)
	if err != nil {
		return err
	}
	path, err := writeDescriptor(genOut, m)
	if err != nil {
		return err
	}
	saveToCatalog(cfg, m, out)
	if out != nil && !out.Passed {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, but validation did not pass after %d attempts\nlast output:\n%s\n", path, out.Iterations, out.LastOutput)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
