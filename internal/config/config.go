package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DBPath         string `toml:"db_path"`
	Sort           string `toml:"sort"`            // "laptime" or "driver"
	IncludeInvalid bool   `toml:"include_invalid"` // keep laps not valid for best
	Format         string `toml:"format"`          // "" = from extension, "csv", "xlsx"
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"` // "console" or "json"
}

// DefaultPath is ~/.config/hotlaps/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hotlaps", "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path means
// DefaultPath; a missing default file is not an error, a missing explicit
// one is. Without a home directory the database defaults to hotlaps.db in
// the working directory and only an explicit file is read.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	cfg := &Config{
		DBPath:    "hotlaps.db",
		Sort:      "laptime",
		LogLevel:  "info",
		LogFormat: "console",
	}
	if home != "" {
		cfg.DBPath = filepath.Join(home, ".config", "hotlaps", "hotlaps.db")
	}

	explicit := path != ""
	if !explicit {
		if home == "" {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "hotlaps", "config.toml")
	}
	path = expandHome(path, home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

// expandHome leaves path untouched when home is unknown.
func expandHome(path, home string) string {
	if home != "" && len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
