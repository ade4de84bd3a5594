package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/ingest"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/schema"
)

// IngestCmd loads YAML batches of artifacts and operations
var IngestCmd = &cobra.Command{
	Use:   "ingest <file...>",
	Short: "Load artifacts and operations from YAML",
	Long: `Load artifacts and operations from YAML batch files ("-" reads stdin).

A batch document holds an artifacts list and an operations list; a file may
hold several documents separated by "---". Records without an id get a
generated one. Operations are checked against their schema before anything is
written.

Examples:
  provgraph ingest line-3.yaml
  provgraph ingest --dry-run line-3.yaml
  cat batch.yaml | provgraph ingest -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var (
	ingestDryRun     bool
	ingestNoValidate bool
)

func init() {
	IngestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Validate without writing to the database")
	IngestCmd.Flags().BoolVar(&ingestNoValidate, "no-validate", false, "Skip schema validation (schema.dir need not exist)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := openApp(!ingestNoValidate)
	if err != nil {
		return err
	}
	defer a.Close()

	var schemas schema.Provider
	if a.Schemas != nil {
		schemas = a.Schemas
	}
	processor := ingest.NewProcessor(a.Store, schemas, ingestDryRun, logger.ComponentLogger("ingest"))

	useJSON := display.ShouldOutputJSON(cmd)
	if ingestDryRun && !useJSON {
		pterm.Warning.Println("DRY RUN MODE: nothing will be written")
	}

	var results []*ingest.Result
	for _, path := range args {
		in, err := openInput(cmd, path)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd, a)
		result, err := processor.Process(ctx, in)
		cancel()
		in.Close()
		if err != nil {
			if !useJSON {
				pterm.Error.Printf("%s: %v\n", path, err)
			}
			return err
		}
		results = append(results, result)

		if !useJSON {
			pterm.Success.Printf("%s: %d artifacts, %d operations in %d documents (%s)\n",
				path, result.Artifacts, result.Operations, result.Documents,
				result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
			if len(result.Generated) > 0 {
				pterm.Info.Printf("Generated %d ids\n", len(result.Generated))
			}
		}
	}

	if useJSON {
		return display.OutputJSON(cmd.OutOrStdout(), results)
	}
	return nil
}
