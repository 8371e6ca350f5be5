package models

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-logr/logr"
	adkmodel "google.golang.org/adk/model"
)

// LLMFactory creates adkmodel.LLM instances from candidate specs.
type LLMFactory interface {
	// CreateLLM creates a adkmodel.LLM for one candidate.
	CreateLLM(ctx context.Context, spec ModelSpec, logger logr.Logger) (adkmodel.LLM, error)

	// SupportedProviders returns the providers this factory supports.
	SupportedProviders() []Provider
}

// LLMProviderFunc is a function that creates a adkmodel.LLM for a specific provider.
type LLMProviderFunc func(ctx context.Context, spec ModelSpec, opts ClientOptions, logger logr.Logger) (adkmodel.LLM, error)

// DefaultLLMFactory is the default LLM factory implementation.
type DefaultLLMFactory struct {
	providers map[Provider]LLMProviderFunc
	opts      ClientOptions
}

// NewDefaultLLMFactory creates a new default LLM factory with all built-in providers.
func NewDefaultLLMFactory(opts ClientOptions) *DefaultLLMFactory {
	f := &DefaultLLMFactory{
		providers: make(map[Provider]LLMProviderFunc),
		opts:      opts,
	}

	f.RegisterProvider(ProviderGemini, createGeminiLLM)
	f.RegisterProvider(ProviderGeminiVertexAI, createGeminiVertexAILLM)
	f.RegisterProvider(ProviderOpenAI, createOpenAILLM)
	f.RegisterProvider(ProviderAnthropic, createAnthropicLLM)
	f.RegisterProvider(ProviderOllama, createOllamaLLM)

	return f
}

// RegisterProvider registers a provider constructor.
func (f *DefaultLLMFactory) RegisterProvider(provider Provider, fn LLMProviderFunc) {
	f.providers[provider] = fn
}

// CreateLLM implements LLMFactory.
func (f *DefaultLLMFactory) CreateLLM(ctx context.Context, spec ModelSpec, logger logr.Logger) (adkmodel.LLM, error) {
	fn, ok := f.providers[spec.GetProvider()]
	if !ok {
		return nil, fmt.Errorf("unsupported model provider: %s", spec.GetProvider())
	}
	return fn(ctx, spec, f.opts, logger)
}

// SupportedProviders implements LLMFactory.
func (f *DefaultLLMFactory) SupportedProviders() []Provider {
	providers := make([]Provider, 0, len(f.providers))
	for p := range f.providers {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}
