package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records navigation outcomes, gestures and history depth.
type Metrics struct {
	navigations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	gestures    *prometheus.CounterVec
	entries     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_navigations_total",
				Help: "Total number of navigation attempts by outcome",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waypoint_navigation_duration_seconds",
				Help:    "Duration of navigation attempts, checks included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_gestures_total",
				Help: "Total number of browser gestures by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_history_entries",
			Help: "Number of entries in the most recently changed history",
		}),
	}
	reg.MustRegister(m.navigations, m.duration, m.gestures, m.entries)
	return m
}

// Hooks returns engine hooks feeding the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnNavigate: func(ctx context.Context, e *domain.NavigationEvent) {
			status := string(e.Status)
			m.navigations.WithLabelValues(status).Inc()
			if e.Status != domain.StatusQueued {
				m.duration.WithLabelValues(status).Observe(e.Duration.Seconds())
			}
		},
		OnGesture: func(ctx context.Context, e *domain.GestureEvent) {
			dir := string(e.Direction)
			if dir == "" {
				dir = "none"
			}
			m.gestures.WithLabelValues(dir, e.Outcome).Inc()
		},
		OnHistory: func(entries int) {
			m.entries.Set(float64(entries))
		},
	}
}

// LogHooks returns hooks writing one structured line per event.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnNavigate: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.InfoContext(ctx, "navigation",
				"path", e.Path,
				"view", e.View,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
		OnGesture: func(ctx context.Context, e *domain.GestureEvent) {
			logger.InfoContext(ctx, "gesture",
				"key", e.Key,
				"direction", e.Direction,
				"outcome", e.Outcome,
			)
		},
	}
}

// Chain combines hook sets; each event is delivered to every set in order.
func Chain(sets ...domain.Hooks) domain.Hooks {
	var out domain.Hooks
	for _, h := range sets {
		h := h
		if h.OnNavigate != nil {
			prev := out.OnNavigate
			out.OnNavigate = func(ctx context.Context, e *domain.NavigationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNavigate(ctx, e)
			}
		}
		if h.OnGesture != nil {
			prev := out.OnGesture
			out.OnGesture = func(ctx context.Context, e *domain.GestureEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnGesture(ctx, e)
			}
		}
		if h.OnHistory != nil {
			prev := out.OnHistory
			out.OnHistory = func(entries int) {
				if prev != nil {
					prev(entries)
				}
				h.OnHistory(entries)
			}
		}
	}
	return out
}
