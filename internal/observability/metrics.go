package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "afterschool_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	DBTxDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "afterschool_db_tx_seconds",
			Help:    "Duration of order placement transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "afterschool_orders_total",
			Help: "Order placement attempts by result",
		},
		[]string{"result"},
	)

	OutboxLag = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "afterschool_outbox_lag_seconds",
			Help: "Age of the oldest outbox record published in the last relay pass",
		},
	)

	RabbitPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "afterschool_rabbit_publish_failures_total",
			Help: "Total failed rabbit publishes",
		},
	)
)

var registerOnce sync.Once

func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal, DBTxDuration, OrdersTotal, OutboxLag, RabbitPublishFailures)
	})
}
