// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Collectors holds every metric the service records.  A nil *Collectors
// records nothing.
type Collectors struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ReservationsTotal   *prometheus.CounterVec
	BansEnforcedTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them on registry.  A nil
// registry gets a fresh one.
func New(registry *prometheus.Registry) *Collectors {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collectors{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotel_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_reservations_total",
				Help: "Reservations created, by creation path",
			},
			[]string{"path"},
		),
		BansEnforcedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_bans_enforced_total",
				Help: "Requests stopped by an active ban, by actor kind",
			},
			[]string{"kind"},
		),
	}
	registry.MustRegister(c.HTTPRequestsTotal, c.HTTPRequestDuration, c.ReservationsTotal, c.BansEnforcedTotal)
	return c
}

// ReservationCreated counts a new reservation by booking path.
func (c *Collectors) ReservationCreated(path string) {
	if c == nil {
		return
	}
	c.ReservationsTotal.WithLabelValues(path).Inc()
}

// BanEnforced counts a session ended by the ban gate.
func (c *Collectors) BanEnforced(kind model.ActorKind) {
	if c == nil {
		return
	}
	c.BansEnforcedTotal.WithLabelValues(string(kind)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by the matched
// route template, so path parameters do not explode cardinality.
func (c *Collectors) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method
			c.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
