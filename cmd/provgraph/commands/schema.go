package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/am"
	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/schema"
)

// SchemaCmd represents the schema command
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List and check operation schemas",
	Long: `schema - List and check operation schemas

Schemas are YAML files in schema.dir describing the attachment kinds of an
operation type and the provenance steps between them.

Examples:
  provgraph schema ls                   # Loaded operation types
  provgraph schema check mill.yaml      # Parse a schema file without loading it`,
}

var schemaLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List loaded operation types",
	RunE:  runSchemaLs,
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check <file...>",
	Short: "Parse schema files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSchemaCheck,
}

func init() {
	SchemaCmd.AddCommand(schemaLsCmd)
	SchemaCmd.AddCommand(schemaCheckCmd)
}

func runSchemaLs(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	provider, err := schema.NewDirProvider(cfg.GetSchemaDir(), logger.ComponentLogger("schema"))
	if err != nil {
		return err
	}

	var list []*schema.OperationSchema
	for _, urn := range provider.TypeURNs() {
		s, err := provider.GetOperationSchema(context.Background(), urn)
		if err != nil {
			return err
		}
		list = append(list, s)
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), list)
	}

	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.TypeURN, s.Version, itoa(len(s.Attachments.ChildKinds)), itoa(len(s.Provenance.Steps))})
	}
	pterm.Info.Printf("Schemas in %s\n", provider.Dir())
	return display.Table(cmd.OutOrStdout(), []string{"TYPE", "VERSION", "KINDS", "STEPS"}, rows)
}

func runSchemaCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		schemas, err := schema.LoadFile(path)
		if err != nil {
			pterm.Error.Printf("%s: %v\n", path, err)
			failed++
			continue
		}
		pterm.Success.Printf("%s: %d schema(s)\n", path, len(schemas))
	}
	if failed > 0 {
		return errors.Newf("%d of %d schema files failed to parse", failed, len(args))
	}
	return nil
}
