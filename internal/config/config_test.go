// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/pkg/errutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driftline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultInstanceName, cfg.Instance.Name)
	assert.Equal(t, config.DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, config.DefaultMetricsAddr, cfg.Observability.Addr)
	assert.Equal(t, config.DefaultFeedPageLimit, cfg.Feed.PageLimit)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://db.example/driftline
instance:
  name: Tidepool
  base_url: https://tidepool.example
log:
  format: text
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db.example/driftline", cfg.Database.URL)
	assert.Equal(t, "Tidepool", cfg.Instance.Name)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, config.DefaultMetricsAddr, cfg.Observability.Addr, "unset keys keep their defaults")
}

func TestLoad_FlagsBeatFile(t *testing.T) {
	path := writeConfig(t, "log:\n  format: text\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log.format", "", "")
	require.NoError(t, flags.Parse([]string{"--log.format=json"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env.example/driftline")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env.example/driftline", cfg.Database.URL)
}

func TestLoad_FileBeatsEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env.example/driftline")
	path := writeConfig(t, "database:\n  url: postgres://file.example/driftline\n")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file.example/driftline", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}
