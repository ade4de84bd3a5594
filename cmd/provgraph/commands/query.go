package commands

import (
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/internal/app"
	"github.com/teranos/provgraph/pattern"
)

// QueryCmd matches a subgraph pattern against a lineage
var QueryCmd = &cobra.Command{
	Use:   "query <id...>",
	Short: "Match a subgraph pattern against the lineage of artifacts",
	Long: `Match a subgraph pattern against the provenance graph of artifacts.

The pattern file ("-" reads stdin) holds one directive per line:

  node <var> [label=artifact|step] [key=value ...]
  edge <from> <to> [key=value ...]
  limit <n>

Node properties are the artifact and step attributes (type_urn, tags,
operation_type_urn, step_name ...); edge properties are kind_urn and mode.

Examples:
  provgraph query C --pattern milled.pat
  echo "node p type_urn=urn:part:milled" | provgraph query C --pattern -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var (
	queryPattern  string
	queryStrategy string
)

func init() {
	QueryCmd.Flags().StringVarP(&queryPattern, "pattern", "p", "", "Pattern file (- for stdin)")
	QueryCmd.Flags().StringVarP(&queryStrategy, "strategy", "s", "", "ancestors|descendants[+N] (default from config)")
	QueryCmd.MarkFlagRequired("pattern")
}

// queryOutput lists, per variable, the bound node of each match.
type queryOutput struct {
	Matches  int                 `json:"matches"`
	Vars     []string            `json:"vars"`
	Bindings map[string][]string `json:"bindings"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, queryPattern)
	if err != nil {
		return err
	}
	text, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return errors.Wrap(err, "read pattern")
	}
	q, err := pattern.Parse(string(text))
	if err != nil {
		return err
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	strategy, err := a.Strategy(queryStrategy)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, a)
	defer cancel()
	result, err := a.Explorer.QueryProvenance(ctx, app.SplitIDs(joinArgs(args)), q, strategy, pattern.NewMatcher())
	if err != nil {
		return err
	}

	out := queryOutput{Matches: result.Matches(), Vars: q.Vars(), Bindings: make(map[string][]string)}
	for v, nodes := range result.Bindings {
		for _, n := range nodes {
			out.Bindings[v] = append(out.Bindings[v], n.ID())
		}
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), out)
	}

	if out.Matches == 0 {
		pterm.Warning.Println("No matches")
		return nil
	}
	rows := make([][]string, out.Matches)
	for i := range rows {
		row := make([]string, len(out.Vars))
		for j, v := range out.Vars {
			if bound := out.Bindings[v]; i < len(bound) {
				row[j] = bound[i]
			}
		}
		rows[i] = row
	}
	if err := display.Table(cmd.OutOrStdout(), out.Vars, rows); err != nil {
		return err
	}
	pterm.Info.Printf("%d matches against %d nodes\n", out.Matches, result.Graph.Len())
	return nil
}
