package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wakti/wakti-nlp/internal/config"
	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/intent"
	"github.com/wakti/wakti-nlp/internal/logging"
)

// loadConfig reads the config file named by --config (if any) on top of
// defaults and WAKTI_* environment variables.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger applies --verbose and --log-level over the configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// loadDetector returns a detector over the configured intent catalog,
// or the built-in one when no override path is set.
func loadDetector(cfg *config.Config) (*intent.Detector, error) {
	if cfg.Catalogs.IntentPath == "" {
		return intent.NewDetector(intent.DefaultCatalog()), nil
	}
	catalog, err := intent.LoadCatalogFile(cfg.Catalogs.IntentPath)
	if err != nil {
		return nil, err
	}
	return intent.NewDetector(catalog), nil
}

// loadAnalyzer returns an analyzer over the configured feature catalog.
func loadAnalyzer(cfg *config.Config) (*features.Analyzer, error) {
	if cfg.Catalogs.FeaturePath == "" {
		return features.NewAnalyzer(features.DefaultCatalog()), nil
	}
	catalog, err := features.LoadCatalogFile(cfg.Catalogs.FeaturePath)
	if err != nil {
		return nil, err
	}
	return features.NewAnalyzer(catalog), nil
}
