package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/storage"
)

// appName is the application name used for directories and display.
const appName = "deckforge"

// defaultAddr is the listen address used by serve when the config does
// not set one.
const defaultAddr = ":8080"

// Config holds the TOML configuration shared by all commands.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StorageConfig configures the backends behind storage URIs.
type StorageConfig struct {
	RedisTTLSeconds  int    `toml:"redis_ttl_seconds"`
	S3Region         string `toml:"s3_region"`
	S3Endpoint       string `toml:"s3_endpoint"`
	S3ForcePathStyle bool   `toml:"s3_force_path_style"`
}

// storageConfig converts the TOML settings into the storage package's
// config type.
func (c Config) storageConfig() storage.Config {
	return storage.Config{
		RedisTTL:         time.Duration(c.Storage.RedisTTLSeconds) * time.Second,
		S3Region:         c.Storage.S3Region,
		S3Endpoint:       c.Storage.S3Endpoint,
		S3ForcePathStyle: c.Storage.S3ForcePathStyle,
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default config is not an error; a missing
// explicit config is.
func loadConfig(path string) (Config, error) {
	var cfg Config
	cfg.Server.Addr = defaultAddr

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing config %s", path)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	return cfg, nil
}

// defaultConfigPath returns the XDG config location
// (~/.config/deckforge/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// withConfig returns a new context with the config attached.
func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the config from ctx, falling back to the
// zero config with defaults applied.
func configFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return Config{Server: ServerConfig{Addr: defaultAddr}}
}
