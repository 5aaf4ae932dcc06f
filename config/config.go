// Package config loads application configuration from a YAML file plus the
// environment. The MongoDB URI is a secret and is read from the environment
// only, never from the config file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// MongoURIEnv is the environment variable holding the connection string.
const MongoURIEnv = "MONGODB_URI"

// Defaults applied when the config file leaves values unset.
const (
	DefaultDatabase   = "pov_claims"
	DefaultCollection = "claims"
	DefaultPageSize   = 100
)

// Config is the full application configuration.
type Config struct {
	MongoDB        MongoDB        `mapstructure:"mongodb"`
	Query          Query          `mapstructure:"query"`
	DataGeneration DataGeneration `mapstructure:"data_generation"`
	Logger         Logger         `mapstructure:"logger"`
}

// MongoDB holds store location and target collection. URI comes from the
// environment.
type MongoDB struct {
	URI        string `mapstructure:"-"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// Query holds engine defaults.
type Query struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
}

// Logger holds logging output settings.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Tier describes one band of synthetic providers: how many providers and how
// many claims each gets.
type Tier struct {
	NumProviders      int `mapstructure:"num_providers"`
	ClaimsPerProvider int `mapstructure:"claims_per_provider"`
}

// DataGeneration configures the synthetic claim generator.
type DataGeneration struct {
	Tiers     []Tier `mapstructure:"tiers"`
	DateStart string `mapstructure:"date_start"`
	DateEnd   string `mapstructure:"date_end"`
	BatchSize int    `mapstructure:"batch_size"`
}

// Load reads configuration from path. When requireURI is set, MONGODB_URI
// must be present in the environment and is injected into the result;
// operations that never touch the store can pass false.
func Load(path string, requireURI bool) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("mongodb.database", DefaultDatabase)
	v.SetDefault("mongodb.collection", DefaultCollection)
	v.SetDefault("query.default_page_size", DefaultPageSize)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("data_generation.date_start", "2000-01-01")
	v.SetDefault("data_generation.date_end", "2003-12-31")
	v.SetDefault("data_generation.batch_size", 10000)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.MongoDB.URI = strings.TrimSpace(os.Getenv(MongoURIEnv))
	if requireURI && cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("%s must be set in the environment when connecting to mongodb", MongoURIEnv)
	}

	return &cfg, nil
}
