package main

import (
	"errors"
	"fmt"

	redisAdapter "github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage session histories stored in Redis",
	Long:  `List, inspect and remove the session histories a "serve" process keeps in Redis (redis.addr).`,
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored sessions found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+s)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the history of a session, current entry marked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		host := store.Host(args[0])
		state, _, err := host.Current(cmd.Context())
		if errors.Is(err, domain.ErrNoHistory) {
			return fmt.Errorf("session %q: %w", args[0], domain.ErrSessionNotFound)
		}
		if err != nil {
			return err
		}
		urls, cursor, err := host.Stack(cmd.Context())
		if err != nil {
			return err
		}
		for i, url := range urls {
			marker := " "
			if i == cursor {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", marker, i, url)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "current key: %d\n", state.Key)
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove stored sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("remove %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
		}
		return nil
	},
}

func openStore() (*redisAdapter.Store, error) {
	if settings.Redis.Addr == "" {
		return nil, fmt.Errorf("redis.addr is not configured (set WAYPOINT_REDIS_ADDR)")
	}
	return redisAdapter.New(settings.Redis.Addr, settings.Redis.Password, settings.Redis.DB,
		redisAdapter.WithPrefix(settings.Redis.Prefix+"history:"),
		redisAdapter.WithTTL(settings.Redis.SessionTTL),
	), nil
}

func init() {
	sessionsCmd.AddCommand(sessionsLsCmd, sessionsShowCmd, sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}
