// Package telemetry exposes Prometheus metrics for the HTTP surface and the
// workspace, search and import workflows.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	ServiceName    string
	MetricsEnabled *bool // nil = enabled
}

func (c *Config) metricsOn() bool {
	if c.MetricsEnabled == nil {
		return true
	}
	return *c.MetricsEnabled
}

func BoolPtr(b bool) *bool { return &b }

var defaultDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Provider owns a private registry so tests and multiple servers in one
// process never collide on registration. A nil *Provider records nothing.
type Provider struct {
	cfg      Config
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	activeRequests prometheus.Gauge

	tabs          *prometheus.CounterVec
	searches      prometheus.Counter
	searchHits    *prometheus.CounterVec
	imports       *prometheus.CounterVec
	reaped        prometheus.Counter
	invalidations *prometheus.CounterVec
	poolConns     *prometheus.GaugeVec
}

func NewProvider(cfg Config) *Provider {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "dossiers-server"
	}
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": cfg.ServiceName}
	p := &Provider{
		cfg:      cfg,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total", Help: "Total number of HTTP requests.", ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.",
			Buckets: defaultDurationBuckets, ConstLabels: constLabels,
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight", Help: "Number of HTTP requests being served.", ConstLabels: constLabels,
		}),
		tabs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workspace_tabs_total", Help: "Tab open requests by module and outcome (opened or focused).",
			ConstLabels: constLabels,
		}, []string{"module", "outcome"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "search_queries_total", Help: "Non-blank global search queries.", ConstLabels: constLabels,
		}),
		searchHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "search_hits_total", Help: "Search results returned by category.", ConstLabels: constLabels,
		}, []string{"category"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendee_import_names_total", Help: "Imported attendee names by match result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consultations_reaped_total", Help: "Empty consultations deleted on tab teardown.",
			ConstLabels: constLabels,
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_invalidations_total", Help: "Collection cache invalidations by topic.",
			ConstLabels: constLabels,
		}, []string{"topic"}),
		poolConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_connections", Help: "Database pool connections by state.", ConstLabels: constLabels,
		}, []string{"state"}),
	}
	reg.MustRegister(p.requests, p.duration, p.activeRequests, p.tabs, p.searches, p.searchHits,
		p.imports, p.reaped, p.invalidations, p.poolConns,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return p
}

func (p *Provider) enabled() bool { return p != nil && p.cfg.metricsOn() }

// Registry is exposed for tests.
func (p *Provider) Registry() *prometheus.Registry { return p.registry }

// MetricsMiddleware records request count and latency by route pattern.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.enabled() {
				return next(c)
			}
			p.activeRequests.Inc()
			start := time.Now()

			err := next(c)

			p.activeRequests.Dec()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			p.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}

// TabOpened counts an AddTab; focused is true when an existing tab was
// reused instead.
func (p *Provider) TabOpened(module string, focused bool) {
	if !p.enabled() {
		return
	}
	outcome := "opened"
	if focused {
		outcome = "focused"
	}
	p.tabs.WithLabelValues(module, outcome).Inc()
}

func (p *Provider) SearchPerformed(hits map[string]int) {
	if !p.enabled() {
		return
	}
	p.searches.Inc()
	for category, n := range hits {
		p.searchHits.WithLabelValues(category).Add(float64(n))
	}
}

func (p *Provider) AttendeesImported(matched, unmatched int) {
	if !p.enabled() {
		return
	}
	p.imports.WithLabelValues("matched").Add(float64(matched))
	p.imports.WithLabelValues("unmatched").Add(float64(unmatched))
}

func (p *Provider) ConsultationReaped() {
	if !p.enabled() {
		return
	}
	p.reaped.Inc()
}

func (p *Provider) CacheInvalidated(topic string) {
	if !p.enabled() {
		return
	}
	p.invalidations.WithLabelValues(topic).Inc()
}

// SetDBPool records pool connection counts from the health check.
func (p *Provider) SetDBPool(active, idle int32) {
	if !p.enabled() {
		return
	}
	p.poolConns.WithLabelValues("active").Set(float64(active))
	p.poolConns.WithLabelValues("idle").Set(float64(idle))
}
