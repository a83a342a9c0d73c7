package main

import (
	"testing"
	"time"

	"github.com/couscous-crawler/couscous/internal/config"
)

// TestNewCrawlCmd tests the crawl command definition.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{}); err == nil {
			t.Error("expected error for missing URL argument")
		}
		if err := cmd.Args(cmd, []string{"https://a.test", "https://b.test"}); err == nil {
			t.Error("expected error for multiple URL arguments")
		}
		if err := cmd.Args(cmd, []string{"https://a.test"}); err != nil {
			t.Errorf("unexpected error for single URL argument: %v", err)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"depth", "stay-on-domain", "workers", "timeout", "rate",
			"insecure", "db", "resume", "extract-images", "faces-dir",
			"min-image-width", "min-image-height", "detector-cmd", "config",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})
}

// TestBuildConfig tests flag-to-config translation.
func TestBuildConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.SeedURL != "https://example.com" {
			t.Errorf("SeedURL = %q", cfg.SeedURL)
		}
		if cfg.Workers != config.DefaultWorkers {
			t.Errorf("Workers = %d, want %d", cfg.Workers, config.DefaultWorkers)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", cfg.Timeout, config.DefaultTimeout)
		}
		if cfg.Depth != config.DefaultDepth {
			t.Errorf("Depth = %d, want %d", cfg.Depth, config.DefaultDepth)
		}
		if cfg.StayOnDomain || cfg.Resume || cfg.Insecure || cfg.ExtractImages {
			t.Error("boolean flags should default to false")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		cmd := NewCrawlCmd()
		err := cmd.ParseFlags([]string{
			"--depth", "3",
			"--stay-on-domain",
			"--workers", "20",
			"--timeout", "10s",
			"--rate", "2.5",
			"--db", "custom.db",
			"--resume",
		})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.Depth != 3 {
			t.Errorf("Depth = %d, want 3", cfg.Depth)
		}
		if !cfg.StayOnDomain {
			t.Error("StayOnDomain = false, want true")
		}
		if cfg.Workers != 20 {
			t.Errorf("Workers = %d, want 20", cfg.Workers)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
		}
		if cfg.RateLimit != 2.5 {
			t.Errorf("RateLimit = %v, want 2.5", cfg.RateLimit)
		}
		if cfg.DatabasePath != "custom.db" {
			t.Errorf("DatabasePath = %q, want custom.db", cfg.DatabasePath)
		}
		if !cfg.Resume {
			t.Error("Resume = false, want true")
		}
	})

	t.Run("missing explicit config file fails", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--config", "/nonexistent/config.yml"}); err != nil {
			t.Fatal(err)
		}

		if _, err := buildConfig(cmd, []string{"https://example.com"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}
