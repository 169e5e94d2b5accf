package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PoliciesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insurance_policies_issued_total",
		Help: "Policies committed to the primary store",
	})

	DerivedUpdateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insurance_derived_update_failures_total",
		Help: "Derived index writes that failed after a primary commit, by key",
	}, []string{"key"})

	PartialFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insurance_critical_partial_failures_total",
		Help: "Policy issuances that committed but left the derived index behind",
	})

	ReportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insurance_report_duration_seconds",
		Help:    "Time spent composing each report",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})

	CommandFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insurance_command_failures_total",
		Help: "Requests rejected, by operation and error code",
	}, []string{"operation", "code"})
)

// ObserveReport starts a timer for a report; call the returned func when done.
func ObserveReport(report string) func() {
	timer := prometheus.NewTimer(ReportDuration.WithLabelValues(report))
	return func() { timer.ObserveDuration() }
}
