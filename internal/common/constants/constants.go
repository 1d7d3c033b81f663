package constants

import "time"

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 3
	PasswordMaxLength = 20
	SecretMinLength   = 32
	CredentialSaltLen = 16

	SubjectMaxLength      = 200
	ContentMaxLength      = 20000
	RecentPostsLimit      = 10
	DefaultMaxRequestSize = 1 << 20

	DigestTime    = 2
	DigestMemory  = 19 * 1024
	DigestThreads = 1
	DigestKeyLen  = 32

	SessionCookieName     = "session"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultCacheBackend   = "ristretto"
	DefaultCacheCodec     = "msgpack"
	DefaultCacheMaxCost   = 64 << 20
	DefaultCacheCounters  = 1e6
	DefaultCacheBuffer    = 64
	DefaultBigCacheWindow = 24 * time.Hour

	DefaultPollMaxAttempts = 8
	DefaultPollBaseDelay   = 25 * time.Millisecond
	DefaultPollMaxDelay    = 500 * time.Millisecond
	DefaultPollTimeout     = 3 * time.Second

	DefaultMemStoreVisibilityLag = 2

	RevokedTokenCleanupSchedule    = "@every 1h"
	CredentialCacheTTL             = 5 * time.Second
	CredentialCacheCleanupInterval = time.Minute

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerWriteGrace        = 5 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultBlogHTTPPort       = "8080"
	DefaultBlogRequestTimeout = 5 * time.Second

	DefaultCircuitBreakerThreshold = 50
	DefaultCircuitBreakerTimeout   = 5 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	RateLimitCleanupInterval          = 5 * time.Minute
	RateLimitLoginRequestsPerSecond   = 1
	RateLimitLoginBurst               = 5
	RateLimitSignupRequestsPerSecond  = 0.2
	RateLimitSignupBurst              = 3
	RateLimitGeneralRequestsPerSecond = 20
	RateLimitGeneralBurst             = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
