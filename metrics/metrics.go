// Package metrics exposes Prometheus counters for tasks, reminders and alarms.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "go_todo"

// Metrics holds the application counters on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	TasksCreated       prometheus.Counter
	RemindersScheduled prometheus.Counter
	RemindersSkipped   *prometheus.CounterVec
	AlarmsPlayed       prometheus.Counter
	ExtractionsFailed  prometheus.Counter
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_created_total",
			Help:      "Tasks inserted into the store.",
		}),
		RemindersScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_scheduled_total",
			Help:      "Reminders handed to the notification port.",
		}),
		RemindersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_skipped_total",
			Help:      "Reminders not scheduled, by reason.",
		}, []string{"reason"}),
		AlarmsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_played_total",
			Help:      "Alarm sounds started by delivered reminders.",
		}),
		ExtractionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_failed_total",
			Help:      "Due date extractions that fell back to the current time.",
		}),
	}

	m.Registry.MustRegister(
		m.TasksCreated,
		m.RemindersScheduled,
		m.RemindersSkipped,
		m.AlarmsPlayed,
		m.ExtractionsFailed,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
