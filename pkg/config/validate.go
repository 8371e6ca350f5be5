package config

import (
	"fmt"
	"strings"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/models"
	"github.com/go-logr/logr"
)

// Validate checks the loaded configuration.
func Validate(config *Config) error {
	return ValidateWithLogger(config, logr.Discard())
}

// ValidateWithLogger checks the loaded configuration, logging non-fatal
// findings to logger.
func ValidateWithLogger(config *Config, logger logr.Logger) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}
	if len(config.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}

	seen := make(map[string]int, len(config.Models))
	for i, spec := range config.Models {
		if strings.TrimSpace(spec.Identifier) == "" {
			return fmt.Errorf("models[%d].name is required", i)
		}
		if !knownProvider(spec.GetProvider()) {
			return fmt.Errorf("models[%d].provider %q is not supported", i, spec.Provider)
		}
		if spec.GetProvider() == models.ProviderAnthropic && spec.SupportsStructuredOutput {
			return fmt.Errorf("models[%d]: provider %q has no JSON output mode, set structured_output to false", i, spec.Provider)
		}
		if prev, ok := seen[spec.Key()]; ok {
			return fmt.Errorf("models[%d] duplicates models[%d] (%s), each model is tried once per request", i, prev, spec.Key())
		}
		seen[spec.Key()] = i
	}

	if config.Backoff < 0 {
		return fmt.Errorf("backoff must not be negative")
	}
	if config.ExecutionTimeout < 0 {
		return fmt.Errorf("execution_timeout must not be negative")
	}
	if config.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if config.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	if config.ExecutionTimeout > 0 && config.Backoff >= config.ExecutionTimeout {
		logger.Info("Backoff is not shorter than execution_timeout, a quota pause will end the request",
			"backoff", config.Backoff, "executionTimeout", config.ExecutionTimeout)
	}
	return nil
}

// GetConfigSummary returns a summary of the configuration.
func GetConfigSummary(config *Config) string {
	if config == nil {
		return "Config: nil"
	}

	var sb strings.Builder
	sb.WriteString("Config:\n")
	sb.WriteString("  Models:\n")
	for i, spec := range config.Models {
		fmt.Fprintf(&sb, "    %d. %s\n", i+1, spec)
	}
	fmt.Fprintf(&sb, "  Backoff: %s\n", config.Backoff)
	fmt.Fprintf(&sb, "  ExecutionTimeout: %s\n", config.ExecutionTimeout)
	fmt.Fprintf(&sb, "  RequestTimeout: %s\n", config.RequestTimeout)
	fmt.Fprintf(&sb, "  RequestsPerSecond: %g\n", config.RequestsPerSecond)
	return sb.String()
}

// knownProvider reports whether p is one of the built-in providers.
func knownProvider(p models.Provider) bool {
	switch p {
	case models.ProviderGemini, models.ProviderGeminiVertexAI, models.ProviderOpenAI, models.ProviderAnthropic, models.ProviderOllama:
		return true
	}
	return false
}
