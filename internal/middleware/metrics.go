package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// VotesCast counts answer votes by type.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_votes_cast_total",
		Help: "Total number of answer votes cast by type",
	}, []string{"type"})

	// NotificationsPublished counts notifications appended by event kind.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_notifications_published_total",
		Help: "Total number of notifications published by event kind",
	}, []string{"kind"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// MetricsMiddleware returns the Fiber handler recording per-request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
