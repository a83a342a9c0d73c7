package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".couscous"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file structure. Everything in it is
// optional; it only overrides built-in defaults, never CLI flags.
//
// Example:
//
//	user_agents:
//	  - "Mozilla/5.0 (X11; Linux x86_64) ..."
//	images:
//	  min_width: 256
//	  min_height: 256
//	  faces_dir: "found-faces"
//	  detector_command: ["python3", "face_detect.py", "yolov12l-face.pt"]
type File struct {
	// UserAgents replaces the built-in User-Agent pool when non-empty.
	UserAgents []string `yaml:"user_agents"`

	// Images holds image-pipeline defaults.
	Images ImageDefaults `yaml:"images"`
}

// ImageDefaults holds config-file defaults for the image pipeline.
type ImageDefaults struct {
	// MinWidth and MinHeight override the default minimum image dimensions.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`

	// FacesDir overrides the default output directory.
	FacesDir string `yaml:"faces_dir"`

	// DetectorCommand is the external face-detection command and its
	// leading arguments.
	DetectorCommand []string `yaml:"detector_command"`
}

// LoadConfigFile loads defaults from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply merges file values into the config. Only non-empty file values are
// applied, and only where the corresponding Config field still holds its
// default, so CLI flags always win.
func (c *Config) Apply(cf *File) {
	if cf == nil {
		return
	}

	if len(cf.UserAgents) > 0 {
		c.UserAgents = cf.UserAgents
	}
	if cf.Images.MinWidth > 0 && c.MinImageWidth == DefaultMinImageWidth {
		c.MinImageWidth = cf.Images.MinWidth
	}
	if cf.Images.MinHeight > 0 && c.MinImageHeight == DefaultMinImageHeight {
		c.MinImageHeight = cf.Images.MinHeight
	}
	if cf.Images.FacesDir != "" && c.FacesDir == DefaultFacesDir {
		c.FacesDir = cf.Images.FacesDir
	}
	if len(cf.Images.DetectorCommand) > 0 && len(c.DetectorCommand) == 0 {
		c.DetectorCommand = cf.Images.DetectorCommand
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .couscous in the current directory
//  3. Look for config.yml in the XDG config directory (~/.config/couscous)
//  4. Look for .couscous in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(xdg.ConfigHome, AppName, "config.yml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
