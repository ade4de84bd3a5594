package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/frame"
	"github.com/teranos/provgraph/internal/app"
)

// FrameCmd groups the spatial frame commands
var FrameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Frame graphs, paths and coordinate mapping",
	Long: `frame - Spatial frame graphs, paths and coordinate mapping

Every framed artifact places its coordinate system in the frame of a parent
artifact. These commands walk that tree.

Examples:
  provgraph frame graph P --strategy children
  provgraph frame path F1 F3b
  provgraph frame map F1 P --point 1,2,3
  provgraph frame map F1 P --box 0,0,0:10,10,10`,
}

var frameGraphCmd = &cobra.Command{
	Use:   "graph <id...>",
	Short: "Build the frame graph around artifacts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFrameGraph,
}

var framePathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Show the frame path between two artifacts",
	Args:  cobra.ExactArgs(2),
	RunE:  runFramePath,
}

var frameMapCmd = &cobra.Command{
	Use:   "map <from> <to>",
	Short: "Map a point or box from one frame into another",
	Args:  cobra.ExactArgs(2),
	RunE:  runFrameMap,
}

var (
	frameStrategy string
	frameFormat   string
	framePoint    string
	frameBox      string
)

func init() {
	frameGraphCmd.Flags().StringVarP(&frameStrategy, "strategy", "s", frame.Full.String(), "full, parents or children")
	frameGraphCmd.Flags().StringVarP(&frameFormat, "format", "f", formatTable, "Output format: table, json")
	frameMapCmd.Flags().StringVar(&framePoint, "point", "", "Point x,y,z in the source frame")
	frameMapCmd.Flags().StringVar(&frameBox, "box", "", "Box minx,miny,minz:maxx,maxy,maxz in the source frame")

	FrameCmd.AddCommand(frameGraphCmd)
	FrameCmd.AddCommand(framePathCmd)
	FrameCmd.AddCommand(frameMapCmd)
}

func runFrameGraph(cmd *cobra.Command, args []string) error {
	strategy, err := frame.ParseStrategy(frameStrategy)
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd, a)
	defer cancel()
	g, err := a.Frames.Build(ctx, app.SplitIDs(joinArgs(args)), strategy)
	if err != nil {
		return err
	}
	return writeGraph(cmd, a.Graphs.FromFrames(g, "frames "+strategy.String()), frameFormat)
}

// buildPath opens the app and finds the path; a missing path is an error
// wrapping ErrNotFound.
func buildPath(cmd *cobra.Command, from, to string) (*frame.Path, error) {
	a, err := openApp(false)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd, a)
	defer cancel()
	p, err := a.Frames.BuildPath(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "no frame path from %s to %s", from, to),
			"both artifacts must have spatial frames under a common root")
	}
	return p, nil
}

func runFramePath(cmd *cobra.Command, args []string) error {
	p, err := buildPath(cmd, args[0], args[1])
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), p.Summary(nil))
	}

	rows := make([][]string, 0, len(p.Steps()))
	for _, s := range p.Steps() {
		dir := "to child"
		if s.TowardsRoot() {
			dir = "to parent"
		}
		t := s.Edge.Frame.Transform
		rows = append(rows, []string{s.From, s.To, dir,
			fmt.Sprintf("(%g, %g, %g)", t.Translation[0], t.Translation[1], t.Translation[2]),
			fmt.Sprintf("(%g, %g, %g)", t.Rotation[0], t.Rotation[1], t.Rotation[2])})
	}
	pterm.Info.Println(strings.Join(p.Nodes(), " -> "))
	if len(rows) == 0 {
		return nil
	}
	return display.Table(cmd.OutOrStdout(), []string{"FROM", "TO", "DIRECTION", "TRANSLATION", "ROTATION"}, rows)
}

func runFrameMap(cmd *cobra.Command, args []string) error {
	if (framePoint == "") == (frameBox == "") {
		return errors.WithHint(
			errors.Invalidf("frame map needs exactly one of --point and --box"),
			"e.g. --point 1,2,3 or --box 0,0,0:10,10,10")
	}

	var point *frame.Vec3
	var box *frame.Box
	if framePoint != "" {
		v, err := frame.ParseVec3(framePoint)
		if err != nil {
			return err
		}
		point = &v
	} else {
		b, err := parseBox(frameBox)
		if err != nil {
			return err
		}
		box = &b
	}

	p, err := buildPath(cmd, args[0], args[1])
	if err != nil {
		return err
	}

	if point != nil {
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cmd.OutOrStdout(), p.Summary(point))
		}
		m := p.MapPoint(*point)
		fmt.Fprintf(cmd.OutOrStdout(), "%g,%g,%g\n", m[0], m[1], m[2])
		return nil
	}

	mapped := p.MapBox(*box)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"path":   p.Nodes(),
			"box":    box,
			"mapped": mapped,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%g,%g,%g:%g,%g,%g\n",
		mapped.Min[0], mapped.Min[1], mapped.Min[2], mapped.Max[0], mapped.Max[1], mapped.Max[2])
	return nil
}

func parseBox(text string) (frame.Box, error) {
	minText, maxText, ok := strings.Cut(text, ":")
	if !ok {
		return frame.Box{}, errors.WithHint(
			errors.Invalidf("box %q", text),
			"give a box as minx,miny,minz:maxx,maxy,maxz")
	}
	lo, err := frame.ParseVec3(minText)
	if err != nil {
		return frame.Box{}, err
	}
	hi, err := frame.ParseVec3(maxText)
	if err != nil {
		return frame.Box{}, err
	}
	return frame.Box{Min: lo, Max: hi}, nil
}
