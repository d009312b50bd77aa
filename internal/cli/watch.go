package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/waypoint/pkg/config"
)

// WatchRoutes polls path and calls reload with the new configuration whenever
// the file changes and still validates. Invalid edits are logged and skipped.
// It returns when ctx is done.
func WatchRoutes(ctx context.Context, path string, guards config.GuardSet, interval time.Duration, logger *slog.Logger, reload func(*config.Config)) {
	last, _ := fingerprint(path)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := fingerprint(path)
		if err != nil || current == last {
			continue
		}
		last = current

		cfg, err := config.Load(path, guards)
		if err != nil {
			logger.Error("Route file changed but is invalid", "path", path, "err", err)
			continue
		}
		logger.Info("Change detected, reloading routes", "path", path, "routes", len(cfg.Routes))
		reload(cfg)
	}
}

type stamp struct {
	modTime time.Time
	size    int64
}

func fingerprint(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{modTime: info.ModTime(), size: info.Size()}, nil
}
