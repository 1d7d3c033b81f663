package server

import (
	"net"
	"net/http"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
)

type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// NewServerConfig derives the server deadlines from the per-request handler
// timeout. The write deadline always leaves ServerWriteGrace after a handler
// hits its timeout, so the error envelope still reaches the client.
func NewServerConfig(port string, requestTimeout time.Duration) ServerConfig {
	if port == "" {
		port = constants.DefaultBlogHTTPPort
	}
	if requestTimeout <= 0 {
		requestTimeout = constants.DefaultBlogRequestTimeout
	}

	write := constants.ServerWriteTimeout
	if floor := requestTimeout + constants.ServerWriteGrace; floor > write {
		write = floor
	}

	return ServerConfig{
		Addr:              net.JoinHostPort("", port),
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      write,
		IdleTimeout:       constants.ServerIdleTimeout,
	}
}

func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
