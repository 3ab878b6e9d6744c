package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callward_events_total",
			Help: "Phone events processed, by trigger and classification result",
		},
		[]string{"trigger", "result"},
	)

	BypassTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callward_bypass_total",
			Help: "Bypass reasons recorded for suppressed events",
		},
		[]string{"reason"},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callward_remote_commands_total",
			Help: "Remote commands executed, by action",
		},
		[]string{"action"},
	)

	RelayFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callward_relay_failures_total",
			Help: "Accepted events that could not be relayed",
		},
	)

	MailboxPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callward_mailbox_polls_total",
			Help: "Control mailbox polls, by outcome",
		},
		[]string{"outcome"},
	)
)

// Serve exposes the /metrics endpoint on addr. It runs until the listener
// fails and is meant to be started as a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Metrics server stopped", "error", err)
	}
}
