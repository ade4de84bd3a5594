package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/am"
	"github.com/teranos/provgraph/errors"
	grapherror "github.com/teranos/provgraph/graph/error"
	"github.com/teranos/provgraph/internal/app"
	"github.com/teranos/provgraph/logger"
)

// openApp loads the configuration and opens the database, and the schema
// directory when withSchemas is set.
func openApp(withSchemas bool) (*app.App, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return app.Open(cfg, app.Options{Schemas: withSchemas}, logger.ComponentLogger("app"))
}

// commandContext bounds a command by explore.timeout_seconds.
func commandContext(cmd *cobra.Command, a *app.App) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return a.WithTimeout(ctx)
}

// openInput opens path for reading; "-" is stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

// parseValue turns a command-line value into a bool, integer or float when it
// reads as one.
func parseValue(text string) interface{} {
	if b, err := strconv.ParseBool(text); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// ReportError prints err with its user-facing message. With -v the full
// error chain follows.
func ReportError(w io.Writer, err error) {
	ge := grapherror.Classify(err)
	if ge.UserMessage == "" {
		fmt.Fprintln(w, pterm.Red("Error: ")+err.Error())
	} else {
		fmt.Fprintln(w, pterm.Red("Error: ")+ge.UserMessage)
		if logger.Verbosity > 0 {
			fmt.Fprintln(w, "  "+err.Error())
		}
	}
	for _, hint := range ge.Hints() {
		fmt.Fprintln(w, pterm.LightCyan("  hint: ")+hint)
	}
	logger.Debugw("Command failed", ge.ToLogFields()...)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// joinArgs lets ids be given as separate args or one comma-separated list.
func joinArgs(args []string) string {
	return strings.Join(args, ",")
}
