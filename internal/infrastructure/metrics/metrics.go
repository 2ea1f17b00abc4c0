// Package metrics define las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores e histogramas del API. Un *Metrics nil no registra nada.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AuthEventsTotal  *prometheus.CounterVec
	RateLimitedTotal *prometheus.CounterVec
	BlockedBotsTotal prometheus.Counter
}

// NewMetrics crea y registra las métricas en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_http_requests_total",
				Help: "Total de peticiones HTTP por método, ruta y status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "accounts_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_auth_events_total",
				Help: "Eventos de autenticación por tipo y resultado",
			},
			[]string{"event", "outcome"},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_rate_limited_total",
				Help: "Peticiones rechazadas por el rate limiter, por rol",
			},
			[]string{"role"},
		),
		BlockedBotsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "accounts_blocked_bots_total",
				Help: "Peticiones rechazadas por User-Agent de bot",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.AuthEventsTotal, m.RateLimitedTotal, m.BlockedBotsTotal)
	return m
}

// NewRegistry registry propio con los collectors de Go y de proceso.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler expone reg en formato de texto de Prometheus.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveRequest registra una petición terminada.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AuthEvent cuenta un signup, signin o signout con su resultado (ok, conflict, invalid, error).
func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RateLimited cuenta un rechazo del limitador.
func (m *Metrics) RateLimited(role string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(role).Inc()
}

// BotBlocked cuenta un rechazo por User-Agent.
func (m *Metrics) BotBlocked() {
	if m == nil {
		return
	}
	m.BlockedBotsTotal.Inc()
}
