package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "ADVISORD_CONFIG", "ADVISORD_DB_PATH", "ADVISORD_UPSTREAM_URL", "ADVISORD_UPSTREAM_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, DefaultDBPath)
	}
	if cfg.Upstream.Timeout != DefaultUpstreamTimeout {
		t.Errorf("Upstream.Timeout = %s, want %s", cfg.Upstream.Timeout, DefaultUpstreamTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8088")
	t.Setenv("ADVISORD_DB_PATH", "/tmp/advisord-test.db")
	t.Setenv("ADVISORD_UPSTREAM_URL", "http://upstream.test/run")
	t.Setenv("ADVISORD_UPSTREAM_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8088 {
		t.Errorf("Port = %d, want 8088", cfg.Port)
	}
	if cfg.DBPath != "/tmp/advisord-test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Upstream.URL != "http://upstream.test/run" {
		t.Errorf("Upstream.URL = %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("Upstream.Timeout = %s, want 5s", cfg.Upstream.Timeout)
	}
}

func TestLoad_ConfigFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "advisord.yaml")
	content := "port: 4000\ndb_path: from-file.db\nupstream:\n  url: http://file.test/run\n  timeout: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ADVISORD_CONFIG", path)
	t.Setenv("PORT", "4001") // env wins over file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 4001 {
		t.Errorf("Port = %d, want env override 4001", cfg.Port)
	}
	if cfg.DBPath != "from-file.db" {
		t.Errorf("DBPath = %q, want from-file.db", cfg.DBPath)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("Upstream.Timeout = %s, want 10s", cfg.Upstream.Timeout)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "not-a-number"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"port leaves no fallback", map[string]string{"PORT": "65535"}},
		{"bad timeout", map[string]string{"ADVISORD_UPSTREAM_TIMEOUT": "soon"}},
		{"negative timeout", map[string]string{"ADVISORD_UPSTREAM_TIMEOUT": "-1s"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("Load succeeded, want error")
			}
		})
	}
}

func TestLoad_MissingConfigFileIsFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADVISORD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("Load succeeded with missing config file, want error")
	}
}
