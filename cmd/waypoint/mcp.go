package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/mcp"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts a navigation session as an MCP server, so agents can navigate,
go back and inspect the history as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		initial, _ := cmd.Flags().GetString("initial")

		guards, err := guardSet(cmd)
		if err != nil {
			return err
		}
		router, err := waypoint.New(settings.Routes,
			waypoint.WithLogger(logger),
			waypoint.WithGuards(guards),
			waypoint.WithHooks(observability.LogHooks(logger)),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := router.MountConfiguredViews(ctx, nil); err != nil {
			return err
		}
		router.LoadInitialPath(ctx, initial)

		srv := mcp.NewServer(router, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting Waypoint MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Waypoint MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport to use: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for SSE transport")
	mcpCmd.Flags().String("initial", "", "Path the session is opened at")
}

