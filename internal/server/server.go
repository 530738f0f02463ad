// Package server wires the HTTP surface to the store and the upstream AI
// client, and owns the process lifecycle: storage init, port binding,
// accept loop, signal-triggered drain.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advisord/internal/config"
	"advisord/internal/health"
	"advisord/internal/persistence"
	"advisord/internal/ports"
	"advisord/internal/runtime/lifecycle"
	"advisord/internal/upstream"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"
)

// drainTimeout bounds the graceful drain after a termination signal.
// In-flight requests get this long to finish before the process exits
// anyway.
const drainTimeout = 30 * time.Second

// Server holds the core components of advisord.
type Server struct {
	cfg      config.Config
	store    *persistence.Store
	upstream *upstream.Client
	router   *gin.Engine
	life     *lifecycle.Tracker
	health   *health.Tracker
	seq      *lifecycle.Sequencer
	version  string

	listener  net.Listener
	boundPort int
	httpSrv   *http.Server

	apiValidator *openAPIValidator
}

// Option configures a Server during construction.
type Option func(*Server)

// WithVersion stamps the build version reported by headers and /api/health.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// New assembles a Server from configuration. Dependencies are not touched
// yet; storage open and port binding happen in Run so that every
// initialization failure surfaces through one path.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		life:     lifecycle.NewTracker(),
		health:   health.NewTracker(),
		seq:      lifecycle.NewSequencer(),
		version:  "dev",
		upstream: upstream.New(cfg.Upstream.URL, cfg.Upstream.Timeout),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.health.Setf("upstream", health.LevelOK, "relay endpoint "+s.upstream.Endpoint())

	s.setupRoutes()

	s.seq.Register(lifecycle.Component{
		Name: "storage",
		Start: func(ctx context.Context) error {
			store, err := persistence.Open(cfg.DBPath)
			if err != nil {
				s.health.Setf("storage", health.LevelError, err.Error())
				return fmt.Errorf("storage init: %w", err)
			}
			s.store = store
			s.health.Setf("storage", health.LevelOK, "store ready at "+store.Path())
			return nil
		},
		Stop: func(ctx context.Context) error {
			if s.store == nil {
				return nil
			}
			return s.store.Close()
		},
	})
	s.seq.Register(lifecycle.Component{
		Name: "listener",
		Start: func(ctx context.Context) error {
			ln, port, err := ports.Resolve(cfg.Port)
			if err != nil {
				return fmt.Errorf("port resolution: %w", err)
			}
			s.listener = ln
			s.boundPort = port
			return nil
		},
		Stop: func(ctx context.Context) error {
			if s.listener == nil {
				return nil
			}
			// The accept loop usually closed it already during drain.
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				return err
			}
			return nil
		},
	})

	return s, nil
}

// Run starts advisord and blocks until a termination signal has been fully
// drained or the server fails. A nil return means the process drained
// cleanly and may exit 0.
func (s *Server) Run() error {
	serveErr, err := s.start(context.Background())
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-serveErr:
		// Accept loop died without a signal; nothing left to drain.
		_ = s.seq.Stop(context.Background())
		s.life.Advance(lifecycle.Stopped)
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		log.Printf("INFO: Received %s, draining in-flight requests", sig)
	}

	return s.drain()
}

// start brings up dependencies and the accept loop. The returned channel
// yields at most one error from the serve goroutine.
func (s *Server) start(ctx context.Context) (<-chan error, error) {
	if err := s.seq.Start(ctx); err != nil {
		return nil, err
	}

	s.life.Advance(lifecycle.Accepting)
	if s.boundPort != s.cfg.Port {
		log.Printf("INFO: advisord listening on http://localhost:%d (preferred port %d was taken)", s.boundPort, s.cfg.Port)
	} else {
		log.Printf("INFO: advisord listening on http://localhost:%d", s.boundPort)
	}

	// Readiness notify for Type=notify units; a no-op outside systemd.
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("WARN: Failed to notify systemd of readiness: %v", err)
	} else if sent {
		log.Printf("INFO: Notified systemd that service is ready")
	}

	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	return serveErr, nil
}

// drain stops admitting new connections immediately and waits (bounded)
// for in-flight requests to complete, then tears down dependencies.
func (s *Server) drain() error {
	s.life.Advance(lifecycle.Draining)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Drain did not finish cleanly: %v", err)
	}

	if err := s.seq.Stop(context.Background()); err != nil {
		log.Printf("WARN: Component teardown: %v", err)
	}

	s.life.Advance(lifecycle.Stopped)
	log.Printf("INFO: advisord stopped")
	return nil
}

// BoundPort returns the port the server actually listens on. Valid once
// Run (or start) has succeeded.
func (s *Server) BoundPort() int { return s.boundPort }
