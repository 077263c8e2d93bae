package register

import (
	"context"

	"github.com/baraliresort/reserve/internal/metrics"
)

// MetricsObserver counts finished attempts in form_submissions_total.
type MetricsObserver struct{}

// Observe implements Observer.
func (MetricsObserver) Observe(_ context.Context, a Attempt) {
	metrics.SubmissionsTotal.WithLabelValues(FormID, a.Outcome.Label()).Inc()
}
