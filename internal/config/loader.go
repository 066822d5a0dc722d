package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GAMEKEEP_CONFIG is set
//  3. env (prefix GAMEKEEP_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GAMEKEEP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GAMEKEEP_ADDR, GAMEKEEP_MONGO_URI, ...
	// Map env keys like GAMEKEEP_MAX_PAGE_SIZE -> max_page_size (flat keys).
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("GAMEKEEP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gamekeep_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxPageSize <= 0 {
		return fmt.Errorf("%w: max_page_size must be positive", ErrInvalidConfig)
	}
	if c.MongoURI != "" && c.MongoDatabase == "" {
		return fmt.Errorf("%w: mongo_database is required when mongo_uri is set", ErrInvalidConfig)
	}
	return nil
}
