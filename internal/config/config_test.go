package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	chdirTemp(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connect.Timeout != 15*time.Second {
		t.Errorf("connect.timeout: got %v", cfg.Connect.Timeout)
	}
	if cfg.Poller.Interval != 30*time.Second || cfg.Poller.Timeout != 5*time.Second {
		t.Errorf("poller timing: got %v / %v", cfg.Poller.Interval, cfg.Poller.Timeout)
	}
	if cfg.BootGuard.Threshold != 3 {
		t.Errorf("bootguard.threshold: got %d", cfg.BootGuard.Threshold)
	}
	if cfg.Renderer.Tick != 10*time.Millisecond || cfg.Renderer.Frame != 100*time.Millisecond {
		t.Errorf("renderer timing: got %v / %v", cfg.Renderer.Tick, cfg.Renderer.Frame)
	}
	if cfg.Renderer.Window != 3 || cfg.Renderer.Dim != 30 {
		t.Errorf("renderer window/dim: got %d / %d", cfg.Renderer.Window, cfg.Renderer.Dim)
	}
	if cfg.Strip.Pixels != 16 {
		t.Errorf("strip.pixels: got %d", cfg.Strip.Pixels)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := []byte("strip:\n  pixels: 24\nlink:\n  sim_delay: 500ms\n  sim_reject: [\"badnet\"]\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LIGHTHOUSE_POLLER_API_KEY", "k-123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strip.Pixels != 24 {
		t.Errorf("strip.pixels: got %d", cfg.Strip.Pixels)
	}
	if cfg.Link.SimDelay != 500*time.Millisecond {
		t.Errorf("link.sim_delay: got %v", cfg.Link.SimDelay)
	}
	if len(cfg.Link.SimReject) != 1 || cfg.Link.SimReject[0] != "badnet" {
		t.Errorf("link.sim_reject: got %v", cfg.Link.SimReject)
	}
	if cfg.Poller.APIKey != "k-123" {
		t.Errorf("poller.api_key from env: got %q", cfg.Poller.APIKey)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	chdirTemp(t, t.TempDir())
	base, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cases := map[string]func(c *Config){
		"zero pixels":  func(c *Config) { c.Strip.Pixels = 0 },
		"dim too high": func(c *Config) { c.Renderer.Dim = 300 },
		"link mode":    func(c *Config) { c.Link.Mode = "radio" },
		"threshold":    func(c *Config) { c.BootGuard.Threshold = 0 },
		"max body":     func(c *Config) { c.Poller.MaxBody = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

// chdirTemp changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdirTemp(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("os.Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
