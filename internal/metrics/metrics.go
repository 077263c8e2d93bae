// Package metrics holds Prometheus instruments that are used across the
// site.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SubmissionsTotal counts finished submission attempts by terminal
	// state: completed, validation, duplicate, remote, transport.
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Cumulative number of finished form submission attempts by outcome.",
		}, []string{"form", "outcome"})

	SubmissionsRejectedPending = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_pending_rejected_total",
			Help: "Submit attempts refused because one was already in flight.",
		}, []string{"form"})

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reservation_api_request_duration_seconds",
			Help:    "Latency of calls to the remote reservation API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "result"})

	MountedForms = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mounted_forms",
			Help: "Number of form instances currently held in memory.",
		}, []string{"form"})

	FormUnmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_unmount_total",
			Help: "Cumulative number of form instances unmounted, by reason.",
		}, []string{"form", "reason"})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		SubmissionsRejectedPending,
		APIRequestDuration,
		MountedForms,
		FormUnmountTotal,
	)
}
