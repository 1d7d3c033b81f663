package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/AlibekovAA/secure-blog/internal/auth/cleanup"
	authhttp "github.com/AlibekovAA/secure-blog/internal/auth/http"
	bloghttp "github.com/AlibekovAA/secure-blog/internal/blog/http"
	"github.com/AlibekovAA/secure-blog/internal/common/bootstrap"
	"github.com/AlibekovAA/secure-blog/internal/common/config"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonhttp "github.com/AlibekovAA/secure-blog/internal/common/http"
	"github.com/AlibekovAA/secure-blog/internal/common/httpmetrics"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	srv "github.com/AlibekovAA/secure-blog/internal/common/server"
)

func main() {
	log, err := bootstrap.InitializeLogger("blog")
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadBlogConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize blog service: %v", err)
	}

	app.StartBackground(ctx)
	go func() {
		if err := authcleanup.StartRevokedTokenCleanup(ctx, constants.RevokedTokenCleanupSchedule, app.Revoked, log); err != nil {
			log.Errorf("revoked token cleanup stopped: %v", err)
		}
	}()

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler("blog", log, newRouter(app, log))
	finalHandler := rateLimiter.Middleware(baseHandler)

	server := srv.NewServer(srv.NewServerConfig(cfg.HTTPPort, cfg.RequestTimeout), finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("blog service: stopping background jobs")
			cancel()
			rateLimiter.Stop()
			return nil
		},
		func(ctx context.Context) error {
			log.Infof("blog service: closing stores")
			return app.Close(ctx)
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "blog", shutdownHooks)
}

func newRouter(app *bootstrap.App, log *logger.Logger) http.Handler {
	requireSession := authhttp.SessionMiddleware(app.AuthService, log)

	authHandler := authhttp.NewHandler(app.AuthService, authhttp.HandlerConfig{
		CookieSecure:   app.Config.CookieSecure,
		RequestTimeout: app.Config.RequestTimeout,
	}, log)
	blogRouter := bloghttp.NewRouter(app.PostService, requireSession, bloghttp.HandlerConfig{
		RequestTimeout: app.Config.RequestTimeout,
	}, log)

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(commonhttp.MethodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(commonhttp.NotFound)
	r.Use(httpmetrics.RouteTemplate)
	r.Handle("/health", commonhttp.HealthHandler(log, app.HealthChecks()))
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/api/auth/").Handler(authHandler)
	r.PathPrefix("/api/blog/").Handler(blogRouter)
	return r
}
