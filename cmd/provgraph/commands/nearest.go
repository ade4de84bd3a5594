package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/resolve"
)

// NearestCmd resolves the nearest related artifact framed relative to a target
var NearestCmd = &cobra.Command{
	Use:   "nearest <from> <target>",
	Short: "Find the nearest related artifact with a frame path to a target",
	Long: `Search the lineage of <from> ring by ring for the first artifact that
matches --type and --tag and has a spatial frame path to <target>. Ties within
a ring go to the smallest id.

Examples:
  provgraph nearest C T --type urn:part:milled
  provgraph nearest A T --strategy descendants --tag serialized`,
	Args: cobra.ExactArgs(2),
	RunE: runNearest,
}

var (
	nearestStrategy string
	nearestType     string
	nearestTag      string
)

func init() {
	NearestCmd.Flags().StringVarP(&nearestStrategy, "strategy", "s", "", "ancestors|descendants[+N] (default from config)")
	NearestCmd.Flags().StringVar(&nearestType, "type", "", "Only match this type URN")
	NearestCmd.Flags().StringVar(&nearestTag, "tag", "", "Only match artifacts carrying this tag")
}

func runNearest(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	strategy, err := a.Strategy(nearestStrategy)
	if err != nil {
		return err
	}
	var preds []resolve.Predicate
	if nearestType != "" {
		preds = append(preds, resolve.TypeIs(nearestType))
	}
	if nearestTag != "" {
		preds = append(preds, resolve.HasTag(nearestTag))
	}

	ctx, cancel := commandContext(cmd, a)
	defer cancel()
	m, err := a.Resolver.NearestRelated(ctx, args[0], args[1], strategy, resolve.All(preds...))
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		if m == nil {
			return display.OutputJSON(cmd.OutOrStdout(), nil)
		}
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"artifact": m.Artifact,
			"hops":     m.Hops,
			"path":     m.Path.Summary(nil),
		})
	}
	if m == nil {
		pterm.Warning.Printf("No related artifact of %s has a frame path to %s\n", args[0], args[1])
		return nil
	}
	pterm.Success.Printf("%s (%s), %d ring(s) from %s\n", m.Artifact.ID, m.Artifact.TypeURN, m.Hops, args[0])
	pterm.Info.Println("Frame path: " + strings.Join(m.Path.Nodes(), " -> "))
	return nil
}
