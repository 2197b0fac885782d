package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus collectors on a private registry so
// multiple servers (tests) never collide on registration.
type metrics struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reconboard_status_transitions_total",
			Help: "Status transitions applied, by target status.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reconboard_notifications_total",
			Help: "Notification send attempts, by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	m.registry.MustRegister(m.transitions, m.notifications)
	return m
}

func (m *metrics) handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func (m *metrics) recordTransition(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

func (m *metrics) recordNotification(channel string, success bool) {
	outcome := "failed"
	if success {
		outcome = "sent"
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}
