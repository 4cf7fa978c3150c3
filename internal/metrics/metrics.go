// Package metrics exposes Prometheus counters for the auth surface, served
// at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins counts login attempts by outcome ("success" or "failure").
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formakit_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	// GuardRejections counts requests rejected by the auth or role guard,
	// by rejection reason.
	GuardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formakit_guard_rejections_total",
		Help: "Requests rejected by the auth or role guards, by reason.",
	}, []string{"reason"})

	// Registrations counts successful user registrations.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formakit_registrations_total",
		Help: "Successful user registrations.",
	})
)
