package models

import (
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	adkmodel "google.golang.org/adk/model"
	"google.golang.org/genai"
)

// defaultOllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama.
const defaultOllamaBaseURL = "http://localhost:11434/v1"

// OpenAIModel implements model.LLM for OpenAI and OpenAI-compatible endpoints.
type OpenAIModel struct {
	Model  string
	Client openai.Client
	Logger logr.Logger
}

var _ adkmodel.LLM = (*OpenAIModel)(nil)

// NewOpenAIModelWithLogger creates an OpenAI model. apiKey falls back to
// OPENAI_API_KEY; when requireKey is false a placeholder is used for
// endpoints that ignore the key (Ollama and similar).
func NewOpenAIModelWithLogger(modelName, baseURL, apiKey string, requireKey bool, opts ClientOptions, logger logr.Logger) (*OpenAIModel, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		if requireKey {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		apiKey = "ollama"
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(opts.httpClient()),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	// The fallback loop owns retries; each candidate is tried once.
	reqOpts = append(reqOpts, option.WithMaxRetries(0))

	if logger.GetSink() != nil {
		logger.V(1).Info("Initialized OpenAI model", "model", modelName, "baseUrl", baseURL)
	}
	return &OpenAIModel{
		Model:  modelName,
		Client: openai.NewClient(reqOpts...),
		Logger: logger,
	}, nil
}

// Name implements model.LLM.
func (m *OpenAIModel) Name() string {
	return "openai"
}

// GenerateContent implements model.LLM. Streaming is not used; a JSON
// response MIME type maps to response_format=json_object.
func (m *OpenAIModel) GenerateContent(ctx context.Context, req *adkmodel.LLMRequest, _ bool) iter.Seq2[*adkmodel.LLMResponse, error] {
	return func(yield func(*adkmodel.LLMResponse, error) bool) {
		modelName := m.Model
		if modelName == "" {
			modelName = req.Model
		}

		params := openai.ChatCompletionNewParams{
			Model:    shared.ChatModel(modelName),
			Messages: genaiContentsToOpenAIMessages(req.Contents, req.Config),
		}
		if wantsJSON(req.Config) {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		}

		completion, err := m.Client.Chat.Completions.New(ctx, params)
		if err != nil {
			yield(nil, err)
			return
		}
		if len(completion.Choices) == 0 {
			yield(&adkmodel.LLMResponse{ErrorCode: "API_ERROR", ErrorMessage: "No choices in response"}, nil)
			return
		}
		choice := completion.Choices[0]

		fr := genai.FinishReasonStop
		switch choice.FinishReason {
		case "length":
			fr = genai.FinishReasonMaxTokens
		case "content_filter":
			fr = genai.FinishReasonSafety
		}
		var usage *genai.GenerateContentResponseUsageMetadata
		if completion.Usage.PromptTokens > 0 || completion.Usage.CompletionTokens > 0 {
			usage = &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     int32(completion.Usage.PromptTokens),
				CandidatesTokenCount: int32(completion.Usage.CompletionTokens),
			}
		}
		yield(&adkmodel.LLMResponse{
			TurnComplete:  true,
			FinishReason:  fr,
			UsageMetadata: usage,
			Content: &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: choice.Message.Content}},
			},
		}, nil)
	}
}

func genaiContentsToOpenAIMessages(contents []*genai.Content, config *genai.GenerateContentConfig) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if system := systemInstructionText(config); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, content := range contents {
		text := contentText(content)
		if text == "" {
			continue
		}
		switch strings.TrimSpace(content.Role) {
		case "model", "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}

func createOpenAILLM(_ context.Context, spec ModelSpec, opts ClientOptions, logger logr.Logger) (adkmodel.LLM, error) {
	return NewOpenAIModelWithLogger(spec.Identifier, spec.BaseURL, "", true, opts, logger)
}

func createOllamaLLM(_ context.Context, spec ModelSpec, opts ClientOptions, logger logr.Logger) (adkmodel.LLM, error) {
	baseURL := spec.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return NewOpenAIModelWithLogger(spec.Identifier, baseURL, "", false, opts, logger)
}
