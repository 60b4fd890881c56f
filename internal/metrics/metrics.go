// Package metrics exposes Prometheus collectors for the HTTP surface and the
// inventory figures.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// Metrics holds the collectors of one registry
// Prometheusメトリクス一式
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestsDuration *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	itemsTotal     prometheus.Gauge
	quantityTotal  prometheus.Gauge
	lowStockItems  prometheus.Gauge
	pendingInbound prometheus.Gauge
	itemsByStatus  *prometheus.GaugeVec
}

var _ inventory.StatsObserver = (*Metrics)(nil)

// New creates the collectors on a fresh registry, together with the Go and
// process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"code", "method", "path"},
		),
		httpRequestsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		}),
		itemsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_items_total",
			Help: "Number of SKUs in the store.",
		}),
		quantityTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_quantity_total",
			Help: "Sum of all item quantities.",
		}),
		lowStockItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_low_stock_items",
			Help: "Number of items that are low or out of stock.",
		}),
		pendingInbound: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_pending_inbound",
			Help: "Externally supplied number of pending inbound orders.",
		}),
		itemsByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inventory_items_by_status",
			Help: "Number of items per stock status.",
		}, []string{"status"}),
	}
}

// ObserveStats updates the inventory gauges
// 在庫ゲージを更新
func (m *Metrics) ObserveStats(stats inventory.StatsSummary, counts inventory.StatusCounts) {
	m.itemsTotal.Set(float64(stats.TotalSKU))
	m.quantityTotal.Set(float64(stats.TotalQuantity))
	m.lowStockItems.Set(float64(stats.LowStockCount))
	m.pendingInbound.Set(float64(stats.PendingInbound))
	m.itemsByStatus.WithLabelValues(string(inventory.StatusNormal)).Set(float64(counts.Normal))
	m.itemsByStatus.WithLabelValues(string(inventory.StatusLow)).Set(float64(counts.Low))
	m.itemsByStatus.WithLabelValues(string(inventory.StatusOut)).Set(float64(counts.Out))
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, duration and in-flight requests.
// Paths are labelled with the mux route template to keep cardinality bounded.
// HTTPメトリクス収集ミドルウェア
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			path := routePattern(r)
			m.httpRequestsTotal.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
			m.httpRequestsDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			m.httpRequestsInFlight.Dec()
		}()

		next.ServeHTTP(rw, r)
	})
}

func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
