package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	iniconfig "github.com/robfig/config"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
)

// FileSection is the INI section read from BLOG_CONFIG_FILE. Option names are
// the lower-cased environment variable names, e.g. blog_http_port.
const FileSection = "blog"

type BlogConfig struct {
	HTTPPort       string
	DatabaseURL    string
	ReplicaURL     string
	SecretKey      string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	CookieSecure   bool
	AutoMigrate    bool

	CacheBackend  string
	CacheCodec    string
	CacheMaxCost  int64
	RedisAddr     string
	RedisPassword string
	MemcacheAddr  string

	PollMaxAttempts int
	PollBaseDelay   time.Duration
	PollMaxDelay    time.Duration
	PollTimeout     time.Duration

	MemStoreVisibilityLag int

	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

type source struct {
	file *iniconfig.Config
}

func LoadBlogConfig() (BlogConfig, error) {
	src, err := newSource(os.Getenv("BLOG_CONFIG_FILE"))
	if err != nil {
		return BlogConfig{}, err
	}

	secret, err := src.mustEnv("SECRET_KEY")
	if err != nil {
		return BlogConfig{}, err
	}

	if err := validateSecret(secret); err != nil {
		return BlogConfig{}, err
	}

	cfg := BlogConfig{
		HTTPPort:       src.getEnv("BLOG_HTTP_PORT", constants.DefaultBlogHTTPPort),
		DatabaseURL:    src.getEnv("DATABASE_URL", ""),
		ReplicaURL:     src.getEnv("DATABASE_REPLICA_URL", ""),
		SecretKey:      secret,
		SessionTTL:     src.getDurationEnv("BLOG_SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout: src.getDurationEnv("BLOG_REQUEST_TIMEOUT", constants.DefaultBlogRequestTimeout),
		CookieSecure:   src.getBoolEnv("BLOG_COOKIE_SECURE", false),
		AutoMigrate:    src.getBoolEnv("BLOG_AUTO_MIGRATE", true),

		CacheBackend:  strings.ToLower(src.getEnv("BLOG_CACHE_BACKEND", constants.DefaultCacheBackend)),
		CacheCodec:    strings.ToLower(src.getEnv("BLOG_CACHE_CODEC", constants.DefaultCacheCodec)),
		CacheMaxCost:  src.getInt64Env("BLOG_CACHE_MAX_COST", constants.DefaultCacheMaxCost),
		RedisAddr:     src.getEnv("REDIS_ADDR", ""),
		RedisPassword: src.getEnv("REDIS_PASSWORD", ""),
		MemcacheAddr:  src.getEnv("MEMCACHE_ADDR", ""),

		PollMaxAttempts: src.getIntEnv("BLOG_POLL_MAX_ATTEMPTS", constants.DefaultPollMaxAttempts),
		PollBaseDelay:   src.getDurationEnv("BLOG_POLL_BASE_DELAY", constants.DefaultPollBaseDelay),
		PollMaxDelay:    src.getDurationEnv("BLOG_POLL_MAX_DELAY", constants.DefaultPollMaxDelay),
		PollTimeout:     src.getDurationEnv("BLOG_POLL_TIMEOUT", constants.DefaultPollTimeout),

		MemStoreVisibilityLag: src.getIntEnv("BLOG_MEMSTORE_VISIBILITY_LAG", constants.DefaultMemStoreVisibilityLag),

		CircuitBreakerThreshold: src.getIntEnv("BLOG_CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold),
		CircuitBreakerTimeout:   src.getDurationEnv("BLOG_CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		CircuitBreakerReset:     src.getDurationEnv("BLOG_CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),
	}

	if err := cfg.validate(); err != nil {
		return BlogConfig{}, err
	}

	return cfg, nil
}

func (c BlogConfig) validate() error {
	switch c.CacheBackend {
	case "ristretto", "bigcache":
	case "redis":
		if c.RedisAddr == "" {
			return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("cache backend redis requires REDIS_ADDR"))
		}
	case "memcache":
		if c.MemcacheAddr == "" {
			return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("cache backend memcache requires MEMCACHE_ADDR"))
		}
	default:
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("unknown cache backend %q", c.CacheBackend))
	}

	switch c.CacheCodec {
	case "msgpack", "cbor", "json":
	default:
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("unknown cache codec %q", c.CacheCodec))
	}

	if c.PollMaxAttempts < 1 {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("BLOG_POLL_MAX_ATTEMPTS must be positive, got %d", c.PollMaxAttempts))
	}
	if c.PollTimeout <= 0 {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("BLOG_POLL_TIMEOUT must be positive"))
	}
	if c.RequestTimeout <= 0 {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("BLOG_REQUEST_TIMEOUT must be positive"))
	}
	if c.PollTimeout >= c.RequestTimeout {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("BLOG_POLL_TIMEOUT (%s) must be shorter than BLOG_REQUEST_TIMEOUT (%s)", c.PollTimeout, c.RequestTimeout))
	}
	if c.SessionTTL <= 0 {
		return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("BLOG_SESSION_TTL must be positive"))
	}
	return nil
}

func newSource(path string) (*source, error) {
	if path == "" {
		return &source{}, nil
	}
	f, err := iniconfig.ReadDefault(path)
	if err != nil {
		return nil, commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("read %s: %w", path, err))
	}
	return &source{file: f}, nil
}

func validateSecret(secret string) error {
	if len(secret) < constants.SecretMinLength {
		return commonerrors.ErrInvalidSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}

func (s *source) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	if s.file == nil {
		return "", false
	}
	v, err := s.file.String(FileSection, strings.ToLower(key))
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *source) getEnv(key, fallback string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return fallback
}

func (s *source) mustEnv(key string) (string, error) {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func (s *source) getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func (s *source) getIntEnv(key string, fallback int) int {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func (s *source) getInt64Env(key string, fallback int64) int64 {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func (s *source) getBoolEnv(key string, fallback bool) bool {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
