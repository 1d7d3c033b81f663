package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	authrepo "github.com/AlibekovAA/secure-blog/internal/auth/repository"
	authservice "github.com/AlibekovAA/secure-blog/internal/auth/service"
	blogdomain "github.com/AlibekovAA/secure-blog/internal/blog/domain"
	blogrepo "github.com/AlibekovAA/secure-blog/internal/blog/repository"
	blogservice "github.com/AlibekovAA/secure-blog/internal/blog/service"
	"github.com/AlibekovAA/secure-blog/internal/cache"
	"github.com/AlibekovAA/secure-blog/internal/cache/codec"
	"github.com/AlibekovAA/secure-blog/internal/cache/provider"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	"github.com/AlibekovAA/secure-blog/internal/common/config"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/secure-blog/internal/common/crypto"
	"github.com/AlibekovAA/secure-blog/internal/common/db"
	commonhttp "github.com/AlibekovAA/secure-blog/internal/common/http"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/consistency"
)

// App holds every long-lived component of the blog service. Writer and
// Replica are nil when the service runs on in-memory stores.
type App struct {
	Config  config.BlogConfig
	Log     *logger.Logger
	Writer  *pgxpool.Pool
	Replica *pgxpool.Pool
	Redis   goredis.UniversalClient

	Cache     *cache.Store
	Creds     authrepo.CredentialRepository
	Revoked   authrepo.RevokedTokenRepository
	Posts     blogrepo.PostStore
	CredCache *authservice.CredentialCache

	AuthService *authservice.AuthService
	PostService *blogservice.PostService
}

func InitializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}

// New connects the configured backends and builds the services on top of
// them. On error every resource opened so far is released.
func New(ctx context.Context, cfg config.BlogConfig, log *logger.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
		}
	}()

	clk := clock.NewRealClock()

	if err = app.initStores(ctx, clk); err != nil {
		return nil, err
	}
	if err = app.initCache(clk); err != nil {
		return nil, err
	}

	// The credential cache is per process and LogoutEverywhere only drops the
	// local entry. With Redis configured the service is expected to run as
	// several instances, so version checks always go to the repository.
	if app.Redis == nil {
		app.CredCache = authservice.NewCredentialCache(ctx, constants.CredentialCacheTTL, clk, log)
	} else {
		log.Infof("redis configured, credential cache disabled")
	}
	app.AuthService = authservice.NewAuthService(authservice.AuthServiceDeps{
		Creds:       app.Creds,
		Revoked:     app.Revoked,
		Digester:    commoncrypto.NewArgon2Digester(cfg.SecretKey),
		Salts:       commoncrypto.NewRandomSaltGenerator(),
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		CredCache:   app.CredCache,
		Clock:       clk,
		Log:         log,
	}, authservice.AuthServiceConfig{
		SecretKey:               cfg.SecretKey,
		SessionTTL:              cfg.SessionTTL,
		CircuitBreakerThreshold: int32(cfg.CircuitBreakerThreshold),
		CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
		CircuitBreakerReset:     cfg.CircuitBreakerReset,
	})

	postCodec, err := codec.New[blogdomain.Post](cfg.CacheCodec)
	if err != nil {
		return nil, fmt.Errorf("post codec: %w", err)
	}
	listCodec, err := codec.New[[]blogdomain.Post](cfg.CacheCodec)
	if err != nil {
		return nil, fmt.Errorf("list codec: %w", err)
	}

	app.PostService = blogservice.NewPostService(blogservice.PostServiceDeps{
		Store:    app.Posts,
		Posts:    cache.NewReadCache(app.Cache, cache.ViewPost, postCodec),
		Recent:   cache.NewReadCache(app.Cache, cache.ViewRecent, listCodec),
		Renderer: blogservice.NewRenderer(),
		Clock:    clk,
		Log:      log,
	}, blogservice.PostServiceConfig{
		Poll: consistency.Config{
			MaxAttempts: cfg.PollMaxAttempts,
			BaseDelay:   cfg.PollBaseDelay,
			MaxDelay:    cfg.PollMaxDelay,
			Timeout:     cfg.PollTimeout,
		},
		RecentLimit:             constants.RecentPostsLimit,
		CircuitBreakerThreshold: int32(cfg.CircuitBreakerThreshold),
		CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
		CircuitBreakerReset:     cfg.CircuitBreakerReset,
	})

	return app, nil
}

func (a *App) initStores(ctx context.Context, clk clock.Clock) error {
	if a.Config.RedisAddr != "" {
		a.Redis = goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:    []string{a.Config.RedisAddr},
			Password: a.Config.RedisPassword,
		})
	}

	if a.Config.DatabaseURL == "" {
		a.Log.Warnf("DATABASE_URL is empty, using in-memory stores with visibility lag %d", a.Config.MemStoreVisibilityLag)
		a.Creds = authrepo.NewMemoryCredentialRepository()
		a.Posts = blogrepo.NewEventualStore(a.Config.MemStoreVisibilityLag)
		if a.Redis != nil {
			a.Revoked = authrepo.NewRedisRevokedTokenRepository(a.Redis, clk)
		} else {
			a.Revoked = authrepo.NewMemoryRevokedTokenRepository(clk)
		}
		return nil
	}

	if a.Config.AutoMigrate {
		if err := db.Migrate(ctx, a.Log, a.Config.DatabaseURL); err != nil {
			return err
		}
	}

	writer, err := db.NewPool(ctx, a.Log, a.Config.DatabaseURL, "writer")
	if err != nil {
		return err
	}
	a.Writer = writer

	if a.Config.ReplicaURL != "" {
		replica, err := db.NewPool(ctx, a.Log, a.Config.ReplicaURL, "replica")
		if err != nil {
			return err
		}
		a.Replica = replica
	}

	a.Creds = authrepo.NewPgCredentialRepository(writer)
	a.Posts = blogrepo.NewPgPostStore(writer, a.Replica)
	if a.Redis != nil {
		a.Revoked = authrepo.NewRedisRevokedTokenRepository(a.Redis, clk)
	} else {
		a.Revoked = authrepo.NewPgRevokedTokenRepository(writer, clk)
	}
	return nil
}

func (a *App) initCache(clk clock.Clock) error {
	p, err := provider.New(provider.Config{
		Backend:      a.Config.CacheBackend,
		MaxCost:      a.Config.CacheMaxCost,
		KeyPrefix:    cache.DefaultKeyPrefix,
		RedisClient:  a.Redis,
		MemcacheAddr: a.Config.MemcacheAddr,
	})
	if err != nil {
		return fmt.Errorf("cache provider: %w", err)
	}
	a.Cache = cache.NewStore(p, cache.StoreConfig{KeyPrefix: cache.DefaultKeyPrefix}, clk, a.Log)
	a.Log.Infof("read cache backend=%s codec=%s", a.Config.CacheBackend, a.Config.CacheCodec)
	return nil
}

// StartBackground launches the periodic jobs tied to the app's pools. They
// stop when ctx is cancelled.
func (a *App) StartBackground(ctx context.Context) {
	if a.Writer != nil {
		db.StartPoolMetrics(ctx, "writer", a.Writer, constants.DBPoolMetricsInterval)
	}
	if a.Replica != nil {
		db.StartPoolMetrics(ctx, "replica", a.Replica, constants.DBPoolMetricsInterval)
	}
}

func (a *App) HealthChecks() map[string]commonhttp.HealthCheck {
	checks := map[string]commonhttp.HealthCheck{
		"cache": func(ctx context.Context) error { return a.Cache.Ping(ctx) },
	}
	if a.Writer != nil {
		checks["database"] = a.Writer.Ping
	}
	if a.Replica != nil {
		checks["replica"] = a.Replica.Ping
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Close releases resources in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.CredCache != nil {
		a.CredCache.Close()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.Replica != nil {
		a.Replica.Close()
	}
	if a.Writer != nil {
		a.Writer.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
