package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/provgraph/am"
	"github.com/teranos/provgraph/display"
	"github.com/teranos/provgraph/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage provgraph configuration",
	Long: `am - Manage provgraph configuration

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/provgraph/am.toml)
3. User config (~/.provgraph/am.toml)
4. Project config (./am.toml, searched upwards)
5. Environment variables (PROVGRAPH_* prefix, e.g. PROVGRAPH_EXPLORE_MAX_RADIUS)

Examples:
  provgraph am show                          # Show effective configuration
  provgraph am show --format json            # With the source of every key
  provgraph am get explore.default_strategy  # Get one value
  provgraph am set explore.max_radius 4      # Write ./am.toml
  provgraph am where                         # Where each value comes from`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, explore.max_radius)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value",
	Long: `Write a value into the project config (./am.toml) or, with --user, into
~/.provgraph/am.toml. The previous file is kept as a rotating backup.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var (
	configFormat string
	setUser      bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")
	amSetCmd.Flags().BoolVar(&setUser, "user", false, "Write the user config instead of ./am.toml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	data, err := am.Render(configFormat)
	if err != nil {
		return err
	}
	if configFormat == am.FormatTOML {
		fmt.Fprintln(cmd.OutOrStdout(), "# provgraph configuration")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Wrapf(errors.ErrNotFound, "configuration key %q", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path := am.ConfigFileName
	if setUser {
		path = am.UserConfigPath()
		if path == "" {
			return errors.New("no home directory for the user config")
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve config path")
	}

	if err := am.SetValue(abs, args[0], parseValue(args[1])); err != nil {
		return err
	}
	am.Reset()
	pterm.Success.Printf("Set %s in %s\n", args[0], abs)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	am.Reset()
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro := am.GetConfigIntrospection()
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), intro)
	}

	if intro.ConfigFile != "" {
		pterm.Info.Printf("Highest-precedence config file: %s\n", intro.ConfigFile)
	} else {
		pterm.Info.Println("No config file found - defaults and environment only")
	}

	rows := make([][]string, 0, len(intro.Settings))
	for _, s := range intro.Settings {
		rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	return display.Table(cmd.OutOrStdout(), []string{"KEY", "VALUE", "SOURCE", "FROM"}, rows)
}
