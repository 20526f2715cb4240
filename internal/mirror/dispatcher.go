package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/common/logger"
	"github.com/perplexiplay/backend/internal/observability/metrics"
)

// Dispatcher writes to a Sink in the background. Each write gets its own
// timeout and outlives the request that triggered it; failures are logged
// and counted, never returned.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sink Sink, timeout time.Duration, log *logger.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, timeout: timeout, log: log}
}

func (d *Dispatcher) Mirror(ctx context.Context, user domain.User) {
	if _, ok := d.sink.(NopSink); ok {
		return
	}

	doc := NewDocument(user)
	writeCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	metrics.MirrorWritesInFlight.Inc()
	go func() {
		defer d.wg.Done()
		defer metrics.MirrorWritesInFlight.Dec()
		d.write(writeCtx, doc)
	}()
}

func (d *Dispatcher) write(ctx context.Context, doc Document) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	startTime := time.Now()
	err := d.sink.Save(ctx, doc)
	metrics.MirrorWriteDurationSeconds.Observe(time.Since(startTime).Seconds())

	if err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("failure").Inc()
		d.log.WithFields(ctx, logger.Fields{
			"username": doc.Username,
			"user_id":  doc.UserID,
			"action":   "mirror_write_failed",
		}).Errorf("mirror write failed: %v", err)
		return
	}

	metrics.MirrorWritesTotal.WithLabelValues("success").Inc()
	d.log.WithFields(ctx, logger.Fields{
		"username": doc.Username,
		"user_id":  doc.UserID,
		"action":   "mirror_write_success",
	}).Debug("mirror write success")
}

// Wait blocks until pending writes finish or ctx is done. It matches
// server.ShutdownHook.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.log.Warn("mirror drain interrupted: pending writes abandoned")
		return ctx.Err()
	}
}
