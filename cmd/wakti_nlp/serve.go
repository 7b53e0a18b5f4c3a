package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wakti/wakti-nlp/internal/cache"
	"github.com/wakti/wakti-nlp/internal/config"
	"github.com/wakti/wakti-nlp/internal/db"
	"github.com/wakti/wakti-nlp/internal/metrics"
	"github.com/wakti/wakti-nlp/internal/server"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes classification, intent and feature analysis endpoints.
Wizard session endpoints are enabled when WAKTI_DATABASE_URL and WAKTI_JWT_SECRET are set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides the config)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before starting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detector, err := loadDetector(cfg)
	if err != nil {
		return err
	}
	analyzer, err := loadAnalyzer(cfg)
	if err != nil {
		return err
	}

	opts := server.Options{
		Config:   cfg,
		Logger:   logger,
		Detector: detector,
		Analyzer: analyzer,
		Metrics:  metrics.New(),
	}

	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedis(cache.Options{URL: cfg.Redis.URL, TTL: cfg.Redis.TTL})
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()

		if err := redisCache.Ping(ctx); err != nil {
			// The API still works without its cache.
			logger.Warn("redis unavailable, responses will not be cached", zap.Error(err))
		}
		opts.Cache = redisCache
	}

	if cfg.WizardEnabled() {
		store, jwtService, closeStore, err := openWizard(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		opts.Store = store
		opts.JWT = jwtService
	} else {
		logger.Info("wizard sessions disabled; set WAKTI_DATABASE_URL and WAKTI_JWT_SECRET to enable them")
	}

	srv := server.New(opts)
	defer srv.Close()

	return srv.Start(ctx)
}

// openWizard connects the session store and builds the token service.
func openWizard(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.WizardStore, *server.JWTService, func(), error) {
	jwtConfig, err := cfg.JWTConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid JWT configuration: %w", err)
	}

	if serveMigrate {
		if err := db.RunMigrations(cfg.Database.URL); err != nil {
			return nil, nil, nil, err
		}
		logger.Info("database migrations applied")
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}

	return database, server.NewJWTService(jwtConfig), database.Close, nil
}
