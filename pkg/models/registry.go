package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
	adkmodel "google.golang.org/adk/model"
	"google.golang.org/genai"
)

// ErrNoUsableModels is returned when no candidate could be constructed.
var ErrNoUsableModels = errors.New("no usable models configured")

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// RequestsPerSecond caps calls per provider. Zero disables limiting.
	RequestsPerSecond float64
}

// Registry holds one constructed LLM client per candidate and performs
// single generation calls against them. It is built once at startup and
// shared read-only by all requests.
type Registry struct {
	llms     map[string]adkmodel.LLM
	limiters map[Provider]*rate.Limiter
	logger   logr.Logger
}

// NewRegistry constructs clients for specs through factory. Candidates whose
// client cannot be created (usually missing credentials) are skipped with a
// warning; the usable candidates are returned in their original order.
func NewRegistry(ctx context.Context, factory LLMFactory, specs []ModelSpec, opts RegistryOptions, logger logr.Logger) (*Registry, []ModelSpec, error) {
	llms := make(map[string]adkmodel.LLM, len(specs))
	usable := make([]ModelSpec, 0, len(specs))
	for _, spec := range specs {
		if _, ok := llms[spec.Key()]; ok {
			usable = append(usable, spec)
			continue
		}
		llm, err := factory.CreateLLM(ctx, spec, logger)
		if err != nil {
			logger.Info("Skipping model candidate", "model", spec.Key(), "error", err.Error())
			continue
		}
		llms[spec.Key()] = llm
		usable = append(usable, spec)
	}
	if len(usable) == 0 {
		return nil, nil, ErrNoUsableModels
	}
	return NewRegistryFromLLMs(llms, opts, logger), usable, nil
}

// NewRegistryFromLLMs builds a Registry over already constructed clients,
// keyed by ModelSpec.Key.
func NewRegistryFromLLMs(llms map[string]adkmodel.LLM, opts RegistryOptions, logger logr.Logger) *Registry {
	r := &Registry{
		llms:     llms,
		limiters: make(map[Provider]*rate.Limiter),
		logger:   logger,
	}
	if opts.RequestsPerSecond > 0 {
		for key := range llms {
			provider := Provider(strings.SplitN(key, "/", 2)[0])
			if _, ok := r.limiters[provider]; !ok {
				r.limiters[provider] = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
			}
		}
	}
	return r
}

// Generate sends prompt to the candidate in its output mode and returns the
// response text. Failures are returned as *ProviderError.
func (r *Registry) Generate(ctx context.Context, spec ModelSpec, prompt string) (string, error) {
	llm, ok := r.llms[spec.Key()]
	if !ok {
		return "", &ProviderError{Kind: KindNotFound, Model: spec.Key(), Err: fmt.Errorf("model is not registered")}
	}

	if limiter, ok := r.limiters[spec.GetProvider()]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return "", Classify(spec.Key(), fmt.Errorf("rate limit wait: %w", err))
		}
	}

	config := &genai.GenerateContentConfig{}
	if spec.Mode() == OutputModeJSON {
		config.ResponseMIMEType = "application/json"
	}
	req := &adkmodel.LLMRequest{
		Model:    spec.Identifier,
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config:   config,
	}

	var sb strings.Builder
	var finishReason string
	for resp, err := range llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", Classify(spec.Key(), err)
		}
		if resp == nil || resp.Partial {
			continue
		}
		if code := string(resp.ErrorCode); code != "" && !IsNormalCompletion(code) {
			return "", &ProviderError{
				Kind:   KindBlocked,
				Model:  spec.Key(),
				Status: code,
				Err:    errors.New(strings.TrimSpace(FinishReasonMessage(code) + " " + resp.ErrorMessage)),
			}
		}
		if resp.FinishReason != "" {
			finishReason = string(resp.FinishReason)
		}
		sb.WriteString(contentText(resp.Content))
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		if !IsNormalCompletion(finishReason) {
			return "", &ProviderError{Kind: KindBlocked, Model: spec.Key(), Status: finishReason, Err: errors.New(FinishReasonMessage(finishReason))}
		}
		return "", &ProviderError{Kind: KindEmptyResponse, Model: spec.Key(), Err: errors.New("model returned no text")}
	}
	if finishReason == FinishReasonMaxTokens {
		r.logger.Info("Model response was truncated", "model", spec.Key())
	}
	return text, nil
}
