package main

import (
	"log"

	"advisord/internal/config"
	"advisord/internal/server"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	srv, err := server.New(cfg, server.WithVersion(version))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}

	// Run blocks until a termination signal has been drained. Any error is
	// an initialization or serve failure and warrants a non-zero exit.
	if err := srv.Run(); err != nil {
		log.Fatalf("FATAL: Server failed: %v", err)
	}
}
