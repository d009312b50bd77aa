package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/spf13/cobra"
)

var (
	settings cli.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint is a navigation engine for multi-view applications",
	Long: `Waypoint resolves paths to pages, checks guards, keeps a native-compatible
history and drives views. The CLI validates route files, simulates navigation
sessions and serves them over HTTP or MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		v, err := cli.NewViper(configFile)
		if err != nil {
			return err
		}
		for key, flag := range map[string]string{
			"routes":     "routes",
			"log_level":  "log-level",
			"log_format": "log-format",
		} {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}

		settings, err = cli.LoadSettings(v)
		if err != nil {
			return err
		}
		logger, err = settings.Logger()
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./waypoint.yaml if present)")
	rootCmd.PersistentFlags().StringP("routes", "r", "routes.yaml", "Route file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringArray("guard", nil, "Bind a named guard: name=allow|deny|redirect:/path (repeatable)")
}

func guardSet(cmd *cobra.Command) (config.GuardSet, error) {
	bindings, _ := cmd.Flags().GetStringArray("guard")
	return config.ParseGuardSet(bindings)
}
