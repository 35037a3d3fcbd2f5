package activestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sedifex_active_store_resolutions_total",
	Help: "Active-store resolutions, by settled state.",
}, []string{"state"})
