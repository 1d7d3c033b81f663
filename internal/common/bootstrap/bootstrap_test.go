package bootstrap

import (
	"context"
	"testing"
	"time"

	authservice "github.com/AlibekovAA/secure-blog/internal/auth/service"
	blogservice "github.com/AlibekovAA/secure-blog/internal/blog/service"
	"github.com/AlibekovAA/secure-blog/internal/common/config"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

func memoryConfig() config.BlogConfig {
	return config.BlogConfig{
		HTTPPort:                "0",
		SecretKey:               "bootstrap-test-secret-at-least-32-bytes",
		SessionTTL:              time.Hour,
		RequestTimeout:          2 * time.Second,
		CacheBackend:            "ristretto",
		CacheCodec:              "cbor",
		CacheMaxCost:            1 << 20,
		PollMaxAttempts:         5,
		PollBaseDelay:           time.Millisecond,
		PollMaxDelay:            2 * time.Millisecond,
		PollTimeout:             time.Second,
		MemStoreVisibilityLag:   2,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   time.Second,
		CircuitBreakerReset:     time.Minute,
	}
}

func TestNew_InMemory(t *testing.T) {
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	ctx := context.Background()

	app, err := New(ctx, memoryConfig(), log)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	if app.Writer != nil || app.Redis != nil {
		t.Fatal("expected no external connections in memory mode")
	}
	if _, ok := app.HealthChecks()["cache"]; !ok {
		t.Error("expected a cache health check")
	}
	for name, check := range app.HealthChecks() {
		if err := check(ctx); err != nil {
			t.Errorf("health check %s failed: %v", name, err)
		}
	}

	session, err := app.AuthService.Signup(ctx, authservice.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := app.AuthService.Authenticate(ctx, session.Token); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	created, err := app.PostService.Create(ctx, "alice", blogservice.CreatePostInput{Subject: "hello", Content: "world"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := app.PostService.Get(ctx, created.Post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Post.Subject != "hello" {
		t.Errorf("unexpected subject %q", got.Post.Subject)
	}
}

func TestNew_RejectsUnknownCodec(t *testing.T) {
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := memoryConfig()
	cfg.CacheCodec = "gob"

	if _, err := New(context.Background(), cfg, log); err == nil {
		t.Fatal("expected an error for an unknown codec")
	}
}

func TestNew_RedisDisablesCredentialCache(t *testing.T) {
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := memoryConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	app, err := New(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	if app.Redis == nil {
		t.Fatal("expected a redis client")
	}
	if app.CredCache != nil {
		t.Error("expected no process-local credential cache when redis is shared")
	}
	if _, ok := app.HealthChecks()["redis"]; !ok {
		t.Error("expected a redis health check")
	}
}

func TestNew_InMemoryKeepsCredentialCache(t *testing.T) {
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	app, err := New(context.Background(), memoryConfig(), log)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	if app.CredCache == nil {
		t.Error("expected a credential cache for a single instance")
	}
}
