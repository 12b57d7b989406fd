package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/snapshot"
)

// SnapshotConfig selects and configures the snapshot backend.
type SnapshotConfig struct {
	// Backend is one of "file", "redis", "mongo". Defaults to "file".
	Backend string `toml:"backend"`

	// Path is the snapshot file location for the file backend. Defaults to
	// <vault>/.taskweave/snapshot.json.
	Path string `toml:"path"`

	// Addr is the Redis address for the redis backend.
	Addr string `toml:"addr"`

	// URI is the MongoDB connection string for the mongo backend.
	URI string `toml:"uri"`

	// Key namespaces the snapshot within a shared backend.
	Key string `toml:"key"`
}

// Config is the taskweave configuration, loaded from a TOML file with flag
// overrides applied on top.
type Config struct {
	Vault      string         `toml:"vault"`
	Dialect    string         `toml:"dialect"`
	Direction  string         `toml:"direction"`
	DebounceMS int            `toml:"debounce_ms"`
	Snapshot   SnapshotConfig `toml:"snapshot"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Vault:      ".",
		Dialect:    "individual",
		Direction:  "vertical",
		DebounceMS: 500,
		Snapshot:   SnapshotConfig{Backend: "file"},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error; defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// defaultConfigPath returns ~/.config/taskweave/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// SnapshotStore opens the configured snapshot backend.
func (c Config) SnapshotStore(ctx context.Context) (snapshot.Store, error) {
	switch c.Snapshot.Backend {
	case "", "file":
		path := c.Snapshot.Path
		if path == "" {
			path = filepath.Join(c.Vault, "."+appName, "snapshot.json")
		}
		return snapshot.NewFileStore(path)

	case "redis":
		if c.Snapshot.Addr == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis backend requires snapshot.addr")
		}
		return snapshot.NewRedisStore(c.Snapshot.Addr, c.Snapshot.Key), nil

	case "mongo":
		if c.Snapshot.URI == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo backend requires snapshot.uri")
		}
		return snapshot.NewMongoStore(ctx, c.Snapshot.URI, c.Snapshot.Key)

	case "memory":
		return snapshot.NewMemStore(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown snapshot backend: %s", c.Snapshot.Backend)
}
