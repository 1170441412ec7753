//go:build linux
// +build linux

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	eventsTotal     prometheus.Counter
	eventsNoFile    prometheus.Counter
	readErrors      prometheus.Counter
	resolveFailures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		eventsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fsmon",
			Name:      "events_total",
			Help:      "Events received from the kernel notification group.",
		}),
		eventsNoFile: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fsmon",
			Name:      "events_without_file_total",
			Help:      "Events dropped because the kernel attached no file descriptor.",
		}),
		readErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fsmon",
			Name:      "read_errors_total",
			Help:      "Failed reads of the kernel notification group.",
		}),
		resolveFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fsmon",
			Name:      "path_resolve_failures_total",
			Help:      "File descriptors that could not be resolved to a path.",
		}),
	}
}
