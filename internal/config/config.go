package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the MIO coefficient service
type Config struct {
	// Server configuration
	Port    string `env:"PORT,default=8080"`
	GinMode string `env:"GIN_MODE,default=debug"`

	// Comma-separated list of allowed origins; empty allows all origins.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	// Model stores
	ModelDir  string `env:"MODEL_DIR,default=./data/models"`
	NetCDFDir string `env:"NETCDF_MODEL_DIR,default=./data/netcdf"`

	// Request limits
	MaxSeriesPoints int `env:"MAX_SERIES_POINTS,default=10000"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom loads configuration from the given lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.MaxSeriesPoints < 1 {
		return nil, fmt.Errorf("MAX_SERIES_POINTS must be positive, got %d", cfg.MaxSeriesPoints)
	}

	return &cfg, nil
}
