package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/am"
	"github.com/teranos/provgraph/cmd/provgraph/commands"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "provgraph",
	Short: "provgraph - manufacturing provenance and spatial frame graphs",
	Long: `provgraph - manufacturing provenance and spatial frame graphs

provgraph stores artifacts (parts, fixtures, measurements) and the operations
that consumed and produced them, then answers lineage, pattern and spatial
frame questions over that record.

Available commands:
  am       - Manage provgraph configuration
  db       - Migrate the database and show statistics
  schema   - List and check operation schemas
  ingest   - Load artifacts and operations from YAML
  lineage  - Build the provenance graph of artifacts
  query    - Match a subgraph pattern against a lineage
  frame    - Frame graphs, paths and coordinate mapping
  nearest  - Nearest related artifact with a frame path to a target
  mcp      - Serve the exploration tools over MCP (stdio)

Examples:
  provgraph ingest line-3.yaml          # Load a batch
  provgraph lineage C --strategy ancestors+1
  provgraph frame map F1 P --point 1,2,3
  provgraph nearest C T --type urn:part:milled`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		// A broken config is reported by the command that loads it
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.SchemaCmd)
	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.LineageCmd)
	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.FrameCmd)
	rootCmd.AddCommand(commands.NearestCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		commands.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
