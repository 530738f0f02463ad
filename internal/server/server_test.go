package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"advisord/internal/config"

	"github.com/gin-gonic/gin"
)

// testFreePort grabs an ephemeral port and releases it for the server
// under test to claim as its preferred port.
func testFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return port
}

// newTestServer returns a Server with an isolated store, started
// dependencies and a bound listener, ready for router-level tests.
func newTestServer(t *testing.T, upstreamURL string, upstreamTimeout time.Duration) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:   testFreePort(t),
		DBPath: filepath.Join(t.TempDir(), "advisord.db"),
		Upstream: config.Upstream{
			URL:     upstreamURL,
			Timeout: upstreamTimeout,
		},
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.seq.Start(context.Background()); err != nil {
		t.Fatalf("component start: %v", err)
	}
	t.Cleanup(func() { _ = srv.seq.Stop(context.Background()) })
	return srv
}

// newTestServerOnPort is newTestServer with a caller-chosen preferred port.
func newTestServerOnPort(t *testing.T, port int) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:   port,
		DBPath: filepath.Join(t.TempDir(), "advisord.db"),
		Upstream: config.Upstream{
			URL:     "http://unused.test",
			Timeout: time.Second,
		},
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.seq.Start(context.Background()); err != nil {
		t.Fatalf("component start: %v", err)
	}
	t.Cleanup(func() { _ = srv.seq.Stop(context.Background()) })
	return srv
}

// newTestServerExpectingInitFailure builds a server whose storage init
// cannot succeed and runs component startup, which must fail.
func newTestServerExpectingInitFailure(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:   testFreePort(t),
		DBPath: filepath.Join(t.TempDir(), "missing", "nested", "advisord.db"),
		Upstream: config.Upstream{
			URL:     "http://unused.test",
			Timeout: time.Second,
		},
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.seq.Start(context.Background()); err == nil {
		t.Fatalf("component start succeeded, want storage init failure")
	}
	return srv
}
