package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/perplexiplay/backend/internal/observability/metrics"
)

// ObserveQuery records duration for a store operation and, when err is
// non-nil and not one of the expected sentinels, counts it as a query error.
func ObserveQuery(store, operation string, startTime time.Time, err error, expected ...error) {
	metrics.DBQueryDurationSeconds.WithLabelValues(store, operation).Observe(time.Since(startTime).Seconds())

	if err == nil {
		return
	}
	for _, e := range expected {
		if errors.Is(err, e) {
			return
		}
	}
	metrics.DBQueryErrors.WithLabelValues(store, operation, fmt.Sprintf("%T", err)).Inc()
}
