package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/a2a"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/fallback"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/models"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TRANSLATOR_BACKOFF=10s.
const EnvPrefix = "TRANSLATOR"

// DefaultConfigDir is used when neither a flag nor CONFIG_DIR is set.
const DefaultConfigDir = "/config"

// Config holds the translator's runtime settings.
type Config struct {
	// Models is the ordered candidate list. Position is priority.
	Models            []models.ModelSpec `mapstructure:"models"`
	Backoff           time.Duration      `mapstructure:"backoff"`
	ExecutionTimeout  time.Duration      `mapstructure:"execution_timeout"`
	RequestTimeout    time.Duration      `mapstructure:"request_timeout"`
	RequestsPerSecond float64            `mapstructure:"requests_per_second"`
	LogLevel          string             `mapstructure:"log_level"`
}

// Load reads config.json or config.yaml from configDir (optional), then
// applies TRANSLATOR_* environment overrides. TRANSLATOR_MODELS takes a JSON
// array of model objects.
func Load(configDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("backoff", fallback.DefaultBackoff.String())
	v.SetDefault("execution_timeout", a2a.DefaultExecutionTimeout.String())
	v.SetDefault("request_timeout", models.DefaultRequestTimeout.String())
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("log_level", "info")

	v.SetConfigName("config")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv("models")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		modelSpecsFromJSON,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(cfg.Models) == 0 {
		cfg.Models = models.DefaultModelSpecs()
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

var modelSpecsType = reflect.TypeOf([]models.ModelSpec{})

// modelSpecsFromJSON decodes a JSON string into the model list.
func modelSpecsFromJSON(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != modelSpecsType {
		return data, nil
	}
	raw, _ := data.(string)
	if raw == "" {
		return []models.ModelSpec{}, nil
	}
	var specs []models.ModelSpec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil, fmt.Errorf("models must be a JSON array: %w", err)
	}
	return specs, nil
}

// ResolveConfigDir picks the config directory: flag, then CONFIG_DIR, then
// DefaultConfigDir.
func ResolveConfigDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return DefaultConfigDir
}

// AgentCardPath returns the agent card location inside configDir.
func AgentCardPath(configDir string) string {
	return filepath.Join(configDir, "agent-card.json")
}
