package mirror

import (
	"context"
	"os"

	"github.com/perplexiplay/backend/internal/common/config"
	"github.com/perplexiplay/backend/internal/common/constants"
	"github.com/perplexiplay/backend/internal/common/logger"
	"github.com/perplexiplay/backend/internal/common/resilience"
)

// New returns an S3 sink when the mirror is configured and its credentials
// load, and a NopSink otherwise. A misconfigured mirror never fails startup.
func New(ctx context.Context, cfg config.MirrorConfig, log *logger.Logger) Sink {
	if !cfg.Enabled() {
		log.Info("mirror sink disabled: no credentials path or bucket configured")
		return NopSink{}
	}

	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		log.Warnf("mirror sink disabled: credentials file unavailable: %v", err)
		return NopSink{}
	}

	sink, err := NewS3Sink(ctx, cfg)
	if err != nil {
		log.Warnf("mirror sink disabled: %v", err)
		return NopSink{}
	}

	log.Infof("mirror sink enabled: bucket=%s collection=%s", cfg.Bucket, cfg.Collection)
	return NewGuardedSink(sink, resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  constants.MirrorBreakerThreshold,
		ResetAfter: constants.MirrorBreakerResetAfter,
		Name:       "mirror",
		Logger:     log,
	}))
}
