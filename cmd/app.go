package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/config"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/fallback"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/metrics"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/models"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/translation"
	a2atype "github.com/a2aproject/a2a-go/a2a"
	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app holds the components shared by serve and translate.
type app struct {
	cfg        *config.Config
	card       *a2atype.AgentCard
	logger     logr.Logger
	zapLogger  *zap.Logger
	registry   *prometheus.Registry
	invoker    *fallback.Invoker
	candidates []models.ModelSpec
}

// loadEnv reads .env from the working directory; a missing file is fine.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// newApp loads configuration and builds the provider registry and invoker.
func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	if err := loadEnv(); err != nil {
		return nil, err
	}

	configDir := config.ResolveConfigDir(flags.ConfigDir)
	cfg, card, err := config.LoadAgentConfigs(configDir)
	if err != nil {
		return nil, err
	}

	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger, zapLogger := setupLogger(logLevel)
	if err := config.ValidateWithLogger(cfg, logger); err != nil {
		return nil, err
	}
	logger.Info("Loaded config", "configDir", configDir)
	logger.V(1).Info("Config summary", "summary", config.GetConfigSummary(cfg))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(reg)

	factory := models.NewDefaultLLMFactory(models.ClientOptions{RequestTimeout: cfg.RequestTimeout})
	registry, usable, err := models.NewRegistry(ctx, factory, cfg.Models,
		models.RegistryOptions{RequestsPerSecond: cfg.RequestsPerSecond}, logger.WithName("models"))
	if err != nil {
		return nil, fmt.Errorf("failed to create model clients: %w", err)
	}
	for i, spec := range usable {
		logger.Info("Model candidate", "priority", i+1, "model", spec.Key(), "mode", spec.Mode())
	}

	invoker := fallback.New(registry, fallback.Config{
		Backoff: cfg.Backoff,
		Extract: translation.ExtractPayload,
		Metrics: recorder,
	}, logger.WithName("fallback"))

	return &app{
		cfg:        cfg,
		card:       card,
		logger:     logger,
		zapLogger:  zapLogger,
		registry:   reg,
		invoker:    invoker,
		candidates: usable,
	}, nil
}

func (a *app) close() {
	_ = a.zapLogger.Sync()
}
