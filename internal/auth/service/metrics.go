package service

import (
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

func incrementSignups() {
	metrics.SignupsTotal.Inc()
}

func incrementLoginAttempts(result string) {
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func incrementSessionTokensIssued() {
	metrics.SessionTokensIssued.Inc()
}

func incrementSessionTokensRevoked() {
	metrics.SessionTokensRevoked.Inc()
}

func incrementTokenVersionBumps() {
	metrics.TokenVersionBumps.Inc()
}

func incrementSessionValidations() {
	metrics.SessionValidationsTotal.Inc()
}

func incrementSessionValidationFailures(reason string) {
	metrics.SessionValidationsFailed.WithLabelValues(reason).Inc()
}
