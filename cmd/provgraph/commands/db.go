package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/db"
	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/errors"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the provgraph database",
	Long: `db - Manage the provgraph database

Examples:
  provgraph db migrate            # Apply pending migrations
  provgraph db stats              # Artifact, operation and attachment counts`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	versions, err := db.AppliedVersions(a.DB)
	if err != nil {
		return errors.Wrap(err, "failed to list applied migrations")
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"database": a.Config.GetDatabasePath(),
			"applied":  versions,
		})
	}
	pterm.Success.Printf("%s is at migration %s (%d applied)\n", a.Config.GetDatabasePath(), lastOf(versions), len(versions))
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd, a)
	defer cancel()
	stats, err := a.Store.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query storage stats")
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), stats)
	}

	pterm.Info.Printf("Database: %s\n", a.Config.GetDatabasePath())
	return display.Table(cmd.OutOrStdout(), []string{"RECORD", "COUNT"}, [][]string{
		{"artifacts", itoa(stats.Artifacts)},
		{"framed artifacts", itoa(stats.FramedArtifacts)},
		{"operations", itoa(stats.Operations)},
		{"active operations", itoa(stats.ActiveOperations)},
		{"attachments", itoa(stats.Attachments)},
	})
}

func lastOf(versions []string) string {
	if len(versions) == 0 {
		return "none"
	}
	return versions[len(versions)-1]
}
