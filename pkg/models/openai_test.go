package models

import (
	"testing"

	"google.golang.org/genai"
)

func TestOpenAIModel_Name(t *testing.T) {
	m := &OpenAIModel{}
	if got := m.Name(); got != "openai" {
		t.Errorf("Name() = %q, want %q", got, "openai")
	}
}

func TestNewOpenAIModelWithLogger_Credentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewOpenAIModelWithLogger("gpt-4o-mini", "", "", true, ClientOptions{}, discardLogger()); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset and a key is required")
	}

	m, err := NewOpenAIModelWithLogger("llama3", defaultOllamaBaseURL, "", false, ClientOptions{}, discardLogger())
	if err != nil {
		t.Fatalf("keyless endpoint: unexpected error %v", err)
	}
	if m.Model != "llama3" {
		t.Errorf("Model = %q, want %q", m.Model, "llama3")
	}
}

func TestGenaiContentsToOpenAIMessages(t *testing.T) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: "be terse"}}},
	}
	contents := []*genai.Content{
		genai.NewContentFromText("translate this", genai.RoleUser),
		{Role: "model", Parts: []*genai.Part{{Text: "thinking...", Thought: true}, {Text: "done"}}},
		{Role: "user", Parts: []*genai.Part{{Text: ""}}},
		nil,
	}

	msgs := genaiContentsToOpenAIMessages(contents, config)
	if len(msgs) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(msgs))
	}
	if msgs[0].OfSystem == nil {
		t.Errorf("messages[0] should be a system message")
	}
	if msgs[1].OfUser == nil {
		t.Errorf("messages[1] should be a user message")
	}
	if msgs[2].OfAssistant == nil {
		t.Errorf("messages[2] should be an assistant message")
	}
}

func TestWantsJSON(t *testing.T) {
	if wantsJSON(nil) {
		t.Error("wantsJSON(nil) = true")
	}
	if wantsJSON(&genai.GenerateContentConfig{}) {
		t.Error("wantsJSON(empty config) = true")
	}
	if !wantsJSON(&genai.GenerateContentConfig{ResponseMIMEType: "application/json"}) {
		t.Error("wantsJSON(application/json) = false")
	}
}

func TestCreateOllamaLLM_DefaultBaseURL(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")

	llm, err := createOllamaLLM(t.Context(), ModelSpec{Identifier: "qwen2.5-coder", Provider: ProviderOllama}, ClientOptions{}, discardLogger())
	if err != nil {
		t.Fatalf("createOllamaLLM() error = %v", err)
	}
	if llm.Name() != "openai" {
		t.Errorf("Name() = %q, want openai-compatible client", llm.Name())
	}
}
