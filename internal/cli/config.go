package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// appName is the application name used for directories and display.
const appName = "sbml-diff"

// Config holds settings loaded from sbml-diff.toml. Command-line flags
// override whatever the file sets.
type Config struct {
	// Colors assigns diagram colors per model, in input order.
	Colors []string `toml:"colors"`

	// ReactionLabel is the default label mode (name, none, rate, name+rate).
	ReactionLabel string `toml:"reaction_label"`

	// RankDir is the default layout direction.
	RankDir string `toml:"rankdir"`

	// CacheDir overrides the XDG cache location.
	CacheDir string `toml:"cache_dir"`

	// Server settings used by the serve command.
	Server ServerConfig `toml:"server"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	RedisAddr string `toml:"redis_addr"`
	MongoURI  string `toml:"mongo_uri"`
	MongoDB   string `toml:"mongo_db"`
}

// defaultConfig is the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		ReactionLabel: "name",
		RankDir:       "TB",
		Server: ServerConfig{
			Addr:    ":8080",
			MongoDB: "sbmldiff",
		},
	}
}

// loadConfig reads the config file at path, or the default location
// when path is empty. A missing file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, appName+".toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configDir returns the config directory using the XDG standard
// (~/.config/sbml-diff/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/sbml-diff/), unless the config overrides it.
func cacheDir(cfg Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
