package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MirrorWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_writes_total",
			Help: "Total number of mirror sink writes by result",
		},
		[]string{"result"},
	)

	MirrorWriteDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mirror_write_duration_seconds",
			Help:    "Duration of mirror sink writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	MirrorWritesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mirror_writes_in_flight",
			Help: "Number of mirror sink writes currently running",
		},
	)
)
