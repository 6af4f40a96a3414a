// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package config loads runtime configuration from an optional YAML
// file and command-line flags. Flags beat file values; the DATABASE_URL
// environment variable fills in a database URL nothing else set.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults applied after all sources merge.
const (
	DefaultInstanceName  = "driftline"
	DefaultBaseURL       = "http://localhost:8080"
	DefaultAvatarURL     = "https://www.gravatar.com/avatar?d=identicon"
	DefaultLogFormat     = "json"
	DefaultMetricsAddr   = ":9100"
	DefaultFeedPageLimit = 50
)

// Config is the full runtime configuration.
type Config struct {
	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Instance struct {
		Name          string `koanf:"name"`
		BaseURL       string `koanf:"base_url"`
		DefaultAvatar string `koanf:"default_avatar"`
	} `koanf:"instance"`

	Log struct {
		Format string `koanf:"format"`
	} `koanf:"log"`

	Observability struct {
		Addr string `koanf:"addr"`
	} `koanf:"observability"`

	Feed struct {
		PageLimit int `koanf:"page_limit"`
	} `koanf:"feed"`
}

// Load reads path (skipped when empty) and then flags (skipped when
// nil). Flag names use dotted config keys, e.g. "log.format".
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Instance.Name == "" {
		cfg.Instance.Name = DefaultInstanceName
	}
	if cfg.Instance.BaseURL == "" {
		cfg.Instance.BaseURL = DefaultBaseURL
	}
	if cfg.Instance.DefaultAvatar == "" {
		cfg.Instance.DefaultAvatar = DefaultAvatarURL
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Observability.Addr == "" {
		cfg.Observability.Addr = DefaultMetricsAddr
	}
	if cfg.Feed.PageLimit <= 0 {
		cfg.Feed.PageLimit = DefaultFeedPageLimit
	}

	return &cfg, nil
}
