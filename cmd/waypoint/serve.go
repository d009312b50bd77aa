package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/waypoint"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve navigation sessions over HTTP",
	Long: `Starts the HTTP server. Every session gets its own router loaded from the route file.
When redis.addr is configured, session histories are stored in Redis and operations
on a session are serialized with a distributed lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		guards, err := guardSet(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(settings.Routes, guards)
		if err != nil {
			return err
		}

		port := settings.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)

		routerOpts := []waypoint.Option{
			waypoint.WithLogger(logger),
			waypoint.WithGuards(guards),
			waypoint.WithHooks(metrics.Hooks()),
		}
		mws, err := settings.HostMiddleware()
		if err != nil {
			return err
		}

		newHost := func(id string) ports.Host { return memory.NewHost() }
		managerOpts := []session.Option{session.WithLogger(logger)}

		if settings.Redis.Addr != "" {
			store := redisAdapter.New(settings.Redis.Addr, settings.Redis.Password, settings.Redis.DB,
				redisAdapter.WithPrefix(settings.Redis.Prefix+"history:"),
				redisAdapter.WithTTL(settings.Redis.SessionTTL),
			)
			defer store.Close()
			newHost = func(id string) ports.Host { return store.Host(id) }
			managerOpts = append(managerOpts,
				session.WithLocker(redisAdapter.NewLocker(store.Client(), settings.Redis.Prefix)),
				session.WithOnDelete(store.Delete),
			)
			logger.Info("Session histories stored in Redis", "addr", settings.Redis.Addr)
		}
		hosts := func(id string) ports.Host {
			return middleware.Wrap(newHost(id), mws...)
		}

		manager := session.NewManager(session.NewRouterFactory(settings.Routes, hosts, routerOpts...), managerOpts...)
		handler := httpAdapter.NewHandler(manager,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRoutes(cfg.Routes),
			httpAdapter.WithGatherer(reg),
		)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Waypoint server", "addr", srv.Addr, "routes", settings.Routes)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), settings.HTTP.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", settings.HTTP.ShutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "err", err)
				}
			}
			if err := manager.Close(ctx); err != nil {
				logger.Warn("Closing sessions failed", "err", err)
			}
			logger.Info("Waypoint server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides http.port)")
}
