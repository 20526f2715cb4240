package service

import (
	"github.com/perplexiplay/backend/internal/observability/metrics"
)

const (
	resultSuccess   = "success"
	resultFailure   = "failure"
	resultDuplicate = "duplicate"
	resultInvalid   = "invalid"
	resultRejected  = "rejected"
	resultMissing   = "user_missing"
)

func recordRegistration(result string) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
}

func recordLogin(result string) {
	metrics.LoginsTotal.WithLabelValues(result).Inc()
}

func recordIdentityResolution(result string) {
	metrics.IdentityResolutionsTotal.WithLabelValues(result).Inc()
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func recordTokenValidation(ok bool) {
	metrics.JWTValidationsTotal.Inc()
	if !ok {
		metrics.JWTValidationsFailed.Inc()
	}
}
