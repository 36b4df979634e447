package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "MILAGRE_"

type Config struct {
	AppPort string `koanf:"app_port"`

	DatabaseDSN string `koanf:"database_dsn"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`

	// TokenTTL is the fixed lifetime of an admin session token.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// TokenSweepInterval enables the optional expired-token sweep when
	// non-zero. Zero keeps the default lazy-expiry behavior.
	TokenSweepInterval time.Duration `koanf:"token_sweep_interval"`

	LogLevel string `koanf:"log_level"`
}

func Default() Config {
	return Config{
		AppPort:   "8000",
		RedisAddr: "localhost:6379",
		TokenTTL:  7 * 24 * time.Hour,
		LogLevel:  "info",
	}
}

// Load reads configuration from an optional YAML file (MILAGRE_CONFIG_FILE)
// and from MILAGRE_*-prefixed environment variables, env taking priority.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	transform := func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(s)
	}
	if err := k.Load(env.Provider(envPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("config: token_ttl must be positive")
	}

	return cfg, nil
}
