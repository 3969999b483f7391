package fingerprint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fetchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "doorman_avatar_fetches",
	Help: "Number of avatar fetch attempts, by HTTP status code",
}, []string{"status"})

var fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "doorman_avatar_fetch_duration_sec",
	Help: "Duration of avatar fetch attempts",
})
