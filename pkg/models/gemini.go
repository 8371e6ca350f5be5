package models

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	adkmodel "google.golang.org/adk/model"
	adkgemini "google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

func createGeminiLLM(ctx context.Context, spec ModelSpec, opts ClientOptions, logger logr.Logger) (adkmodel.LLM, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini model requires GOOGLE_API_KEY or GEMINI_API_KEY environment variable")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.httpClient(),
	}
	if spec.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: spec.BaseURL}
	}
	if logger.GetSink() != nil {
		logger.V(1).Info("Initialized Gemini model", "model", spec.Identifier)
	}
	return adkgemini.NewModel(ctx, spec.Identifier, cfg)
}

func createGeminiVertexAILLM(ctx context.Context, spec ModelSpec, opts ClientOptions, logger logr.Logger) (adkmodel.LLM, error) {
	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	if location == "" {
		location = os.Getenv("GOOGLE_CLOUD_REGION")
	}
	if project == "" || location == "" {
		return nil, fmt.Errorf("GeminiVertexAI requires GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION (or GOOGLE_CLOUD_REGION) environment variables")
	}

	if logger.GetSink() != nil {
		logger.V(1).Info("Initialized Vertex AI model", "model", spec.Identifier, "project", project, "location", location)
	}
	return adkgemini.NewModel(ctx, spec.Identifier, &genai.ClientConfig{
		Backend:    genai.BackendVertexAI,
		Project:    project,
		Location:   location,
		HTTPClient: opts.httpClient(),
	})
}
