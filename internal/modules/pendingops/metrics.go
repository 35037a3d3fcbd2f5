package pendingops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sedifex_pending_ops_queued_total",
		Help: "Pending product operations queued, by kind.",
	}, []string{"kind"})

	replayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sedifex_pending_ops_replayed_total",
		Help: "Pending product operations replayed against the backend, by kind and outcome.",
	}, []string{"kind", "outcome"})

	storageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sedifex_pending_ops_storage_errors_total",
		Help: "Local storage failures absorbed by the pending operation queue.",
	})
)
