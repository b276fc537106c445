package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics builds the per-route Prometheus middleware for the Fiber app.
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

var likeToggles = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "speedgarage_review_like_toggles_total",
		Help: "Like/unlike operations on reviews, by action.",
	},
	[]string{"action"},
)

// RecordLikeToggle counts a like or unlike operation. action is "like" or "unlike".
func RecordLikeToggle(action string) {
	likeToggles.WithLabelValues(action).Inc()
}
