package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/am"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/mcpserver"
)

// MCPCmd serves the exploration tools over the Model Context Protocol
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve lineage, frame and query tools over MCP (stdio)",
	Long: `Serve provgraph_lineage, provgraph_frames, provgraph_frame_path,
provgraph_query and provgraph_nearest over the Model Context Protocol on
stdin/stdout. Logs go to stderr.

With schema.watch set, schema files are reloaded when they change. Edits to
the config file apply explore.* settings without a restart.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.WatchSchemas(); err != nil {
		logger.Warnw("Schema watcher unavailable", logger.FieldError, err)
	}

	if path := am.ConfigFileUsed(); path != "" {
		watcher, err := am.NewConfigWatcher(path)
		if err != nil {
			logger.Warnw("Config watcher unavailable", logger.FieldFile, path, logger.FieldError, err)
		} else {
			watcher.OnReload(func(cfg *am.Config) error {
				a.Reconfigure(cfg)
				return nil
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	srv, err := mcpserver.New(a, logger.ComponentLogger("mcp"))
	if err != nil {
		return err
	}
	logger.Infow("Serving MCP on stdio", "database", a.Config.GetDatabasePath())
	return srv.ServeStdio()
}
