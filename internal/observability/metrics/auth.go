package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Total number of successful signups",
		},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	SessionTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_tokens_issued_total",
			Help: "Total number of session tokens issued",
		},
	)

	SessionTokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_tokens_revoked_total",
			Help: "Total number of session tokens placed in the denylist",
		},
	)

	TokenVersionBumps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_token_version_bumps_total",
			Help: "Total number of log-out-everywhere operations",
		},
	)

	SessionValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_validations_total",
			Help: "Total number of session token validations",
		},
	)

	SessionValidationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_validations_failed_total",
			Help: "Total number of failed session token validations by reason",
		},
		[]string{"reason"},
	)

	RevokedTokensCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revoked_tokens_cleanup_deleted_total",
			Help: "Total number of expired revoked tokens deleted during cleanup",
		},
	)
)
