package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.DatabasePath != DefaultDatabasePath {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, DefaultDatabasePath)
	}
	if len(cfg.UserAgents) == 0 {
		t.Error("default User-Agent pool should not be empty")
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	// valid returns a config that passes validation; tests mutate one field.
	valid := func() *Config {
		cfg := NewConfig()
		cfg.SeedURL = "https://example.com/"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing seed URL",
			mutate:  func(c *Config) { c.SeedURL = "" },
			wantErr: ErrNoSeedURL,
		},
		{
			name:    "relative seed URL",
			mutate:  func(c *Config) { c.SeedURL = "/just/a/path" },
			wantErr: ErrInvalidSeedURL,
		},
		{
			name:    "non-http scheme",
			mutate:  func(c *Config) { c.SeedURL = "ftp://example.com/" },
			wantErr: ErrInvalidSeedURL,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkerCount,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.Depth = -1 },
			wantErr: ErrInvalidDepth,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimit = -1 },
			wantErr: ErrInvalidRateLimit,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.DatabasePath = "" },
			wantErr: ErrNoDatabasePath,
		},
		{
			name: "image extraction with zero min width",
			mutate: func(c *Config) {
				c.ExtractImages = true
				c.MinImageWidth = 0
			},
			wantErr: ErrInvalidImageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestBaseDomain tests seed host extraction.
func TestBaseDomain(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.SeedURL = "https://Example.COM:8443/start"

	if got := cfg.BaseDomain(); got != "example.com" {
		t.Errorf("BaseDomain() = %q, want %q", got, "example.com")
	}
}

// TestLoadConfigFile tests YAML loading and merging.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("loads and applies values", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".couscous")
		content := `
user_agents:
  - "test-agent/1.0"
images:
  min_width: 256
  min_height: 300
  faces_dir: "found"
  detector_command: ["python3", "detect.py"]
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		cfg := NewConfig()
		cfg.Apply(cf)

		if len(cfg.UserAgents) != 1 || cfg.UserAgents[0] != "test-agent/1.0" {
			t.Errorf("UserAgents = %v, want [test-agent/1.0]", cfg.UserAgents)
		}
		if cfg.MinImageWidth != 256 || cfg.MinImageHeight != 300 {
			t.Errorf("min image size = %dx%d, want 256x300", cfg.MinImageWidth, cfg.MinImageHeight)
		}
		if cfg.FacesDir != "found" {
			t.Errorf("FacesDir = %q, want %q", cfg.FacesDir, "found")
		}
		if len(cfg.DetectorCommand) != 2 {
			t.Errorf("DetectorCommand = %v, want [python3 detect.py]", cfg.DetectorCommand)
		}
	})

	t.Run("flags win over file values", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.MinImageWidth = 512 // set by a flag, differs from default

		cfg.Apply(&File{Images: ImageDefaults{MinWidth: 256}})

		if cfg.MinImageWidth != 512 {
			t.Errorf("MinImageWidth = %d, want flag value 512", cfg.MinImageWidth)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".couscous")
		if err := os.WriteFile(path, []byte("user_agents: ["), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}
