package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleYAML = `mongodb:
  database: pov_claims
  collection: claims
query:
  default_page_size: 50
logger:
  level: debug
  format: text
data_generation:
  date_start: "2001-01-01"
  date_end: "2002-12-31"
  batch_size: 500
  tiers:
    - num_providers: 2
      claims_per_provider: 1000
    - num_providers: 5
      claims_per_provider: 100
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(MongoURIEnv, "")
	cfg, err := Load(writeConfig(t, exampleYAML), false)
	require.NoError(t, err)

	assert.Equal(t, "pov_claims", cfg.MongoDB.Database)
	assert.Equal(t, "claims", cfg.MongoDB.Collection)
	assert.Equal(t, 50, cfg.Query.DefaultPageSize)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "2001-01-01", cfg.DataGeneration.DateStart)
	assert.Equal(t, 500, cfg.DataGeneration.BatchSize)
	require.Len(t, cfg.DataGeneration.Tiers, 2)
	assert.Equal(t, Tier{NumProviders: 5, ClaimsPerProvider: 100}, cfg.DataGeneration.Tiers[1])
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(MongoURIEnv, "")
	cfg, err := Load(writeConfig(t, "mongodb: {}\n"), false)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabase, cfg.MongoDB.Database)
	assert.Equal(t, DefaultCollection, cfg.MongoDB.Collection)
	assert.Equal(t, DefaultPageSize, cfg.Query.DefaultPageSize)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10000, cfg.DataGeneration.BatchSize)
}

func TestLoadInjectsURIFromEnv(t *testing.T) {
	t.Setenv(MongoURIEnv, "  mongodb://localhost:27017/pov_claims  ")
	cfg, err := Load(writeConfig(t, exampleYAML), true)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/pov_claims", cfg.MongoDB.URI)
}

func TestLoadRequireURIMissing(t *testing.T) {
	t.Setenv(MongoURIEnv, "")
	_, err := Load(writeConfig(t, exampleYAML), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MongoURIEnv)
}

func TestLoadURIOptional(t *testing.T) {
	t.Setenv(MongoURIEnv, "")
	cfg, err := Load(writeConfig(t, exampleYAML), false)
	require.NoError(t, err)
	assert.Empty(t, cfg.MongoDB.URI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, ":\n  - not: [valid\n"), false)
	assert.Error(t, err)
}
