package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadBlogConfig_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("BLOG_CONFIG_FILE", "")

	cfg, err := LoadBlogConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.CacheBackend != "ristretto" {
		t.Errorf("expected ristretto backend, got %s", cfg.CacheBackend)
	}
	if cfg.CacheCodec != "msgpack" {
		t.Errorf("expected msgpack codec, got %s", cfg.CacheCodec)
	}
	if cfg.PollMaxAttempts != 8 {
		t.Errorf("expected 8 poll attempts, got %d", cfg.PollMaxAttempts)
	}
	if cfg.PollTimeout != 3*time.Second {
		t.Errorf("expected 3s poll timeout, got %v", cfg.PollTimeout)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("expected empty database url, got %s", cfg.DatabaseURL)
	}
}

func TestLoadBlogConfig_MissingSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := LoadBlogConfig()
	if !errors.Is(err, commonerrors.ErrMissingRequiredEnv) {
		t.Fatalf("expected missing env error, got %v", err)
	}
}

func TestLoadBlogConfig_ShortSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "too-short")

	_, err := LoadBlogConfig()
	if !errors.Is(err, commonerrors.ErrInvalidSecret) {
		t.Fatalf("expected invalid secret error, got %v", err)
	}
}

func TestLoadBlogConfig_UnknownBackend(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("BLOG_CACHE_BACKEND", "tape")

	_, err := LoadBlogConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestLoadBlogConfig_RedisBackendNeedsAddr(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("BLOG_CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := LoadBlogConfig()
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected REDIS_ADDR error, got %v", err)
	}
}

func TestLoadBlogConfig_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.ini")
	content := "[blog]\nblog_http_port: 9090\nblog_cache_codec: cbor\nblog_poll_timeout: 750ms\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("BLOG_CONFIG_FILE", path)
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("BLOG_HTTP_PORT", "7070")

	cfg, err := LoadBlogConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "7070" {
		t.Errorf("expected environment to override file, got port %s", cfg.HTTPPort)
	}
	if cfg.CacheCodec != "cbor" {
		t.Errorf("expected codec from file, got %s", cfg.CacheCodec)
	}
	if cfg.PollTimeout != 750*time.Millisecond {
		t.Errorf("expected poll timeout from file, got %v", cfg.PollTimeout)
	}
}

func TestLoadBlogConfig_MissingFile(t *testing.T) {
	t.Setenv("BLOG_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.ini"))
	t.Setenv("SECRET_KEY", testSecret)

	_, err := LoadBlogConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestLoadBlogConfig_RejectsUnusableTimeouts(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "poll outlives the request",
			env:  map[string]string{"BLOG_POLL_TIMEOUT": "5s", "BLOG_REQUEST_TIMEOUT": "5s"},
			want: "BLOG_POLL_TIMEOUT",
		},
		{
			name: "poll longer than the request",
			env:  map[string]string{"BLOG_POLL_TIMEOUT": "10s", "BLOG_REQUEST_TIMEOUT": "2s"},
			want: "BLOG_POLL_TIMEOUT",
		},
		{
			name: "zero session ttl",
			env:  map[string]string{"BLOG_SESSION_TTL": "0s"},
			want: "BLOG_SESSION_TTL",
		},
		{
			name: "negative session ttl",
			env:  map[string]string{"BLOG_SESSION_TTL": "-1h"},
			want: "BLOG_SESSION_TTL",
		},
		{
			name: "zero request timeout",
			env:  map[string]string{"BLOG_REQUEST_TIMEOUT": "0s"},
			want: "BLOG_REQUEST_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SECRET_KEY", testSecret)
			t.Setenv("BLOG_CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadBlogConfig()
			if !errors.Is(err, commonerrors.ErrInvalidConfig) {
				t.Fatalf("expected invalid config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error to name %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadBlogConfig_PollShorterThanRequest(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("BLOG_CONFIG_FILE", "")
	t.Setenv("BLOG_POLL_TIMEOUT", "1s")
	t.Setenv("BLOG_REQUEST_TIMEOUT", "2s")

	cfg, err := LoadBlogConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollTimeout != time.Second || cfg.RequestTimeout != 2*time.Second {
		t.Errorf("unexpected timeouts %v / %v", cfg.PollTimeout, cfg.RequestTimeout)
	}
}
