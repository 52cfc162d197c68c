// Package metrics provides Prometheus metrics for the lifecycle service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the lifecycle service.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Lifecycle operation metrics
	VersionsCreatedTotal   prometheus.Counter
	WorkflowsStartedTotal  prometheus.Counter
	WorkflowActionsTotal   *prometheus.CounterVec
	WorkflowsTimedOutTotal prometheus.Counter

	// Event hub metrics
	EventsPublishedTotal *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registerer. Tests use this with
// a fresh registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditcore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auditcore_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		VersionsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auditcore_versions_created_total",
				Help: "Total number of document versions created",
			},
		),
		WorkflowsStartedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auditcore_workflows_started_total",
				Help: "Total number of workflows started",
			},
		),
		WorkflowActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditcore_workflow_actions_total",
				Help: "Total number of workflow actions processed",
			},
			[]string{"action", "result"},
		),
		WorkflowsTimedOutTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auditcore_workflows_timed_out_total",
				Help: "Total number of workflows expired by the timeout sweep",
			},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditcore_events_published_total",
				Help: "Total number of lifecycle events pushed to console clients",
			},
			[]string{"type"},
		),
	}
}
