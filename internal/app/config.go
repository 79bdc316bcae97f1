package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/raysh454/safeecho/internal/detector"
	"github.com/raysh454/safeecho/internal/logging"
	"github.com/raysh454/safeecho/internal/server"
)

// ErrConfigFileNotFound is returned when an explicitly requested config file
// does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

// Config is the full runtime configuration, one section per component.
type Config struct {
	Server   server.Config   `koanf:"server"`
	Model    ModelConfig     `koanf:"model"`
	Detector detector.Config `koanf:"detector"`
	Log      logging.Config  `koanf:"log"`
}

// ModelConfig locates the trained classifier.
type ModelConfig struct {
	// Path is the SQLite file written by `safeecho train`. A leading ~ is
	// expanded to the user's home directory.
	Path string `koanf:"path"`

	// Required makes startup fail when no model can be loaded. Otherwise the
	// service runs and classification reports the model as unavailable.
	Required bool `koanf:"required"`
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: server.DefaultConfig(),
		Model: ModelConfig{
			Path: "~/.config/safeecho/model.db",
		},
		Detector: detector.DefaultConfig(),
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// configSearchPaths are tried in order when no explicit config file is given.
func configSearchPaths() []string {
	paths := []string{filepath.Join(".safeecho", "config.toml")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "safeecho", "config.toml"))
	}
	return append(paths, "/etc/safeecho/config.toml")
}

// LoadConfig overlays a TOML file on DefaultConfig. With an empty path the
// standard locations are searched and defaults are used when none exist; an
// explicit path must exist. The returned string is the file actually used.
func LoadConfig(path string) (*Config, string, error) {
	k := koanf.New(".")

	var used string
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("loading config %s: %w", path, err)
		}
		used = path
	} else {
		for _, p := range configSearchPaths() {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, "", fmt.Errorf("loading config %s: %w", p, err)
			}
			used = p
			break
		}
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, used, nil
}

// ModelPath returns Model.Path with a leading ~ expanded.
func (c *Config) ModelPath() (string, error) {
	return expandPath(c.Model.Path)
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
