package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_backend_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_backend_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// InvoicesTotal counts committed invoice operations; type is incoming or outgoing,
	// op is create, update or delete
	InvoicesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_backend_invoices_total",
			Help: "Committed invoice operations",
		},
		[]string{"type", "op"},
	)

	// StockRejectionsTotal counts invoice requests refused by the stock engine
	StockRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_backend_stock_rejections_total",
			Help: "Invoice requests rejected for stock reasons",
		},
		[]string{"reason"},
	)

	StockFeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stock_backend_stock_feed_clients",
			Help: "Connected stock feed websocket clients",
		},
	)
)

// RecordInvoice increments the committed-operation counter
func RecordInvoice(kind, op string) {
	InvoicesTotal.WithLabelValues(kind, op).Inc()
}

// RecordRejection increments the stock rejection counter
func RecordRejection(reason string) {
	StockRejectionsTotal.WithLabelValues(reason).Inc()
}
