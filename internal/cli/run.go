package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/observability"
)

var stderr io.Writer = os.Stderr

// DefaultWatchInterval is how often the route file is polled in watch mode.
const DefaultWatchInterval = 500 * time.Millisecond

// RunOptions contains all the configuration for the run and simulate commands.
type RunOptions struct {
	RoutesPath  string
	Guards      config.GuardSet
	InitialPath string
	Headless    bool
	Debug       bool
	// Watch reloads the route table when the route file changes, keeping history.
	Watch         bool
	WatchInterval time.Duration
	Logger        *slog.Logger
}

// Execute builds a router from the route file and drives it with line commands from in.
// SIGINT and SIGTERM end the session cleanly, even while waiting for input.
func Execute(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	sigCtx := notifySignals(ctx)
	defer sigCtx.cancel()
	ctx = sigCtx

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	routerOpts := []waypoint.Option{
		waypoint.WithLogger(logger),
		waypoint.WithGuards(opts.Guards),
	}
	if opts.Debug {
		routerOpts = append(routerOpts, waypoint.WithHooks(observability.LogHooks(logger)))
	}

	router, err := waypoint.New(opts.RoutesPath, routerOpts...)
	if err != nil {
		return fmt.Errorf("error initializing waypoint: %w", err)
	}
	if err := router.MountConfiguredViews(ctx, nil); err != nil {
		return err
	}

	r := &waypoint.Runner{Input: in, Output: out, Headless: opts.Headless}
	if !opts.Headless {
		tui.PrintBanner(out)
		if tui.IsTerminal(out) {
			r.Renderer = tui.NewSnapshotRenderer()
		}
	}

	if opts.InitialPath != "" {
		res := router.LoadInitialPath(ctx, opts.InitialPath)
		logger.Info("Initial path loaded", "path", opts.InitialPath, "status", res.Status)
		if !opts.Headless {
			fmt.Fprintf(out, ">>> Opened at '%s' (%s).\n", router.Snapshot().CurrentPath, res.Status)
		}
	}

	if opts.Watch {
		interval := opts.WatchInterval
		if interval <= 0 {
			interval = DefaultWatchInterval
		}
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go WatchRoutes(watchCtx, opts.RoutesPath, opts.Guards, interval, logger, func(cfg *config.Config) {
			router.LoadStaticRoutes(cfg.Routes)
			if !opts.Headless {
				fmt.Fprintf(out, "\n>>> Routes reloaded (%d).\n", len(cfg.Routes))
			}
		})
	}

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, router) }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		runErr = ctx.Err()
	}
	reportExit(out, router.Snapshot().CurrentPath, runErr, sigCtx.received(), opts.Headless)
	return handleExecutionError(runErr)
}

// Script joins simulate arguments into runner input, one command per argument.
func Script(steps []string) io.Reader {
	return strings.NewReader(strings.Join(steps, "\n") + "\n")
}
