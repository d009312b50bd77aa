package main

import (
	"fmt"
	"os"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a navigation session interactively",
	Long: `Loads the route file, mounts its views and reads navigation commands from stdin
(go, back, forward, view, activate, home, query, state, quit).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Watch, _ = cmd.Flags().GetBool("watch")

		return cli.Execute(cmd.Context(), opts, os.Stdin, cmd.OutOrStdout())
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <step>...",
	Short: "Run navigation steps headlessly and print the outcome of each",
	Example: `  waypoint simulate "go /inbox" "go /admin" back state
  waypoint simulate --initial /users/7 "query tab=posts"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		opts.Headless = true
		return cli.Execute(cmd.Context(), opts, cli.Script(args), cmd.OutOrStdout())
	},
}

func runOptions(cmd *cobra.Command) (cli.RunOptions, error) {
	guards, err := guardSet(cmd)
	if err != nil {
		return cli.RunOptions{}, err
	}
	initial, _ := cmd.Flags().GetString("initial")
	debug, _ := cmd.Flags().GetBool("debug")
	if settings.Routes == "" {
		return cli.RunOptions{}, fmt.Errorf("no route file given (use --routes)")
	}
	return cli.RunOptions{
		RoutesPath:  settings.Routes,
		Guards:      guards,
		InitialPath: initial,
		Debug:       debug,
		Logger:      logger,
	}, nil
}

func init() {
	for _, c := range []*cobra.Command{runCmd, simulateCmd} {
		c.Flags().String("initial", "", "Path the session is opened at (deep link)")
		c.Flags().Bool("debug", false, "Log every navigation and gesture")
		rootCmd.AddCommand(c)
	}
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompts)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload routes when the route file changes")
}
