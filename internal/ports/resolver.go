// Package ports resolves the listening port for the process. The policy is
// deliberately narrow: one preferred port, one fallback step to preferred+1
// when the preferred port is taken, and a hard failure for anything else.
// Operators always know which two ports the daemon can be on.
package ports

import (
	"errors"
	"fmt"
	"log"
	"net"

	"golang.org/x/sys/unix"
)

// Resolve binds a TCP listener on the preferred port, or on preferred+1 if
// the preferred port is already in use by another process. The returned
// listener is the one the server must serve on; the chosen port never
// changes for the process lifetime.
//
// The availability probe is a transient bind that is fully closed before
// the real listener is opened, so the probe can never read its own bind as
// a conflict.
func Resolve(preferred int) (net.Listener, int, error) {
	probe, err := net.Listen("tcp", fmt.Sprintf(":%d", preferred))
	if err == nil {
		if cerr := probe.Close(); cerr != nil {
			return nil, 0, fmt.Errorf("close probe listener on port %d: %w", preferred, cerr)
		}
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", preferred))
		if err != nil {
			return nil, 0, fmt.Errorf("bind port %d: %w", preferred, err)
		}
		return ln, preferred, nil
	}

	if !errors.Is(err, unix.EADDRINUSE) {
		// Permission denied, bad address and friends are configuration
		// problems, not conflicts. No fallback for those.
		return nil, 0, fmt.Errorf("bind port %d: %w", preferred, err)
	}

	fallback := preferred + 1
	log.Printf("WARN: port %d is already in use, falling back to %d", preferred, fallback)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", fallback))
	if err != nil {
		return nil, 0, fmt.Errorf("bind fallback port %d (port %d in use): %w", fallback, preferred, err)
	}
	return ln, fallback, nil
}
