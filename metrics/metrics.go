// Package metrics collects and exposes Prometheus metrics for the
// federation pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the federation counters. A nil *Collector is valid
// and records nothing, so wiring metrics stays optional in tests.
type Collector struct {
	deliverySuccess prometheus.Counter
	deliveryFail    prometheus.Counter
	deadLettered    prometheus.Counter
	inboundActivity *prometheus.CounterVec
	actorFetches    prometheus.Counter
	registry        *prometheus.Registry
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		deliverySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_delivery_success_total",
			Help: "Successful activity deliveries.",
		}),
		deliveryFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_delivery_fail_total",
			Help: "Failed activity delivery attempts.",
		}),
		deadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_delivery_dead_letter_total",
			Help: "Queue messages dropped as unrecoverable or out of retries.",
		}),
		inboundActivity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_inbound_activity_total",
			Help: "Inbound activities by type.",
		}, []string{"type"}),
		actorFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_actor_fetch_total",
			Help: "Remote actor profile fetches.",
		}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c.deliverySuccess,
		c.deliveryFail,
		c.deadLettered,
		c.inboundActivity,
		c.actorFetches,
	)

	return c
}

func (c *Collector) RecordDeliverySuccess() {
	if c == nil {
		return
	}
	c.deliverySuccess.Inc()
}

func (c *Collector) RecordDeliveryFailure() {
	if c == nil {
		return
	}
	c.deliveryFail.Inc()
}

func (c *Collector) RecordDeadLetter() {
	if c == nil {
		return
	}
	c.deadLettered.Inc()
}

func (c *Collector) RecordInboundActivity(activityType string) {
	if c == nil {
		return
	}
	c.inboundActivity.WithLabelValues(activityType).Inc()
}

func (c *Collector) RecordActorFetch() {
	if c == nil {
		return
	}
	c.actorFetches.Inc()
}

// Handler exposes the registry for a /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
