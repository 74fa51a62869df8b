package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/citytour/pkg/pipeline"
)

// Cache backends selectable in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

const defaultServerAddr = ":8080"

// Config is the contents of config.toml. Every field is optional; command
// flags override the values read from the file.
//
//	start_city = "Paris"
//	delimiter  = ";"
//	mode       = "symmetric"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
//	namespace  = "staging"
//	ttl        = "24h"
//
//	[server]
//	addr = ":8080"
type Config struct {
	StartCity  string       `toml:"start_city"`
	MatrixPath string       `toml:"matrix_path"`
	Delimiter  string       `toml:"delimiter"`
	Mode       string       `toml:"mode"`
	Cache      CacheConfig  `toml:"cache"`
	Server     ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // file (default), redis, mongo or none
	Dir       string   `toml:"dir"`     // file backend; defaults to the XDG cache dir
	RedisAddr string   `toml:"redis_addr"`
	MongoURI  string   `toml:"mongo_uri"`
	Namespace string   `toml:"namespace"`
	TTL       duration `toml:"ttl"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	Timeout      duration `toml:"timeout"`
	Metrics      *bool    `toml:"metrics"`
}

// duration reads Go duration strings such as "90s" or "24h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Delimiter: pipeline.DefaultDelimiter,
		Mode:      pipeline.DefaultMode.String(),
		Cache:     CacheConfig{Backend: backendFile},
		Server:    ServerConfig{Addr: defaultServerAddr},
	}
}

// loadConfig reads path over the defaults. With an empty path the default
// location is tried and a missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("config: cache.redis_addr is required for the redis backend")
		}
	case backendMongo:
		if c.Cache.MongoURI == "" {
			return fmt.Errorf("config: cache.mongo_uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q (must be file, redis, mongo or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("config: cache.ttl must not be negative")
	}
	return nil
}

// metricsEnabled reports whether serve exposes /metrics. It defaults to on.
func (c ServerConfig) metricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}

// configPath returns the config file location using the XDG standard
// (~/.config/citytour/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
