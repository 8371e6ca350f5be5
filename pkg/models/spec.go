package models

import (
	"fmt"
	"strings"
)

// Provider names the API family a candidate model is served by.
type Provider string

const (
	ProviderGemini         Provider = "gemini"
	ProviderGeminiVertexAI Provider = "gemini_vertex_ai"
	ProviderOpenAI         Provider = "openai"
	ProviderAnthropic      Provider = "anthropic"
	ProviderOllama         Provider = "ollama"
)

// OutputMode is how a candidate is asked to answer.
type OutputMode string

const (
	// OutputModeJSON asks the provider for syntactically valid JSON.
	OutputModeJSON OutputMode = "json"
	// OutputModeText asks for free text; the payload must be extracted.
	OutputModeText OutputMode = "text"
)

// ModelSpec is one candidate in the ordered fallback list.
type ModelSpec struct {
	Identifier               string   `json:"name" mapstructure:"name"`
	Provider                 Provider `json:"provider,omitempty" mapstructure:"provider"`
	SupportsStructuredOutput bool     `json:"structured_output" mapstructure:"structured_output"`
	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, Ollama).
	BaseURL string `json:"base_url,omitempty" mapstructure:"base_url"`
}

// Mode returns the output mode the candidate is called with. Anthropic has
// no JSON output mode and is always called for free text.
func (s ModelSpec) Mode() OutputMode {
	if s.SupportsStructuredOutput && s.GetProvider() != ProviderAnthropic {
		return OutputModeJSON
	}
	return OutputModeText
}

// GetProvider returns the provider, defaulting to Gemini.
func (s ModelSpec) GetProvider() Provider {
	if s.Provider == "" {
		return ProviderGemini
	}
	return Provider(strings.ToLower(string(s.Provider)))
}

// Key identifies the candidate across providers.
func (s ModelSpec) Key() string {
	return string(s.GetProvider()) + "/" + s.Identifier
}

func (s ModelSpec) String() string {
	return fmt.Sprintf("%s (%s)", s.Key(), s.Mode())
}

// DefaultModelSpecs is the candidate list used when none is configured.
func DefaultModelSpecs() []ModelSpec {
	return []ModelSpec{
		{Identifier: "gemini-2.5-flash", Provider: ProviderGemini, SupportsStructuredOutput: true},
		{Identifier: "gemini-2.5-flash-lite", Provider: ProviderGemini, SupportsStructuredOutput: true},
		{Identifier: "gemma-3-27b-it", Provider: ProviderGemini, SupportsStructuredOutput: false},
	}
}
