// Package config loads the application configuration from an optional YAML
// file, EASYSKS_-prefixed environment variables and command-line flags, in
// ascending precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment variables. Sections are separated by
// double underscores so single underscores survive as part of key names:
// EASYSKS_SERVER__PORT=8080 sets server.port, EASYSKS_AUTH__JWT_SECRET sets
// auth.jwt_secret.
const envPrefix = "EASYSKS_"

// Config is the full application configuration.
type Config struct {
	Server    Server    `koanf:"server"`
	Database  Database  `koanf:"database"`
	Auth      Auth      `koanf:"auth"`
	Scheduler Scheduler `koanf:"scheduler"`
	Log       Log       `koanf:"log"`
	Catalog   Catalog   `koanf:"catalog"`
}

// Server configures the HTTP listener.
type Server struct {
	Host           string   `koanf:"host"`
	Port           int      `koanf:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Database configures the SQLite store.
type Database struct {
	Path string `koanf:"path" validate:"required"`
}

// Auth configures bearer-token verification. The secret is not validated
// here because only the API server needs it; it checks at startup.
type Auth struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
	Audience  string `koanf:"audience"`
	Provider  string `koanf:"provider" validate:"required"`
}

// Scheduler tunes the spaced-repetition engine. Zero values fall back to
// the engine defaults.
type Scheduler struct {
	DesiredRetention    float64 `koanf:"desired_retention" validate:"omitempty,gt=0,lt=1"`
	MaximumIntervalDays int     `koanf:"maximum_interval_days" validate:"min=0"`
	QueueCap            int     `koanf:"queue_cap" validate:"min=0"`
}

// Log selects the logging mode: "dev" or "prod".
type Log struct {
	Mode string `koanf:"mode" validate:"oneof=dev prod production development"`
}

// Catalog configures where the card catalog is seeded from.
type Catalog struct {
	Sources []Source `koanf:"sources" validate:"dive"`
}

// Source is one git repository holding catalog files.
type Source struct {
	URL  string `koanf:"url" validate:"required"`
	Ref  string `koanf:"ref"`
	Path string `koanf:"path"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Server: Server{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Database: Database{Path: "easysks.db"},
		Auth:     Auth{Provider: "cognito"},
		Log:      Log{Mode: "dev"},
	}
}

// Load builds the configuration. path may be empty or point to a missing
// file; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
