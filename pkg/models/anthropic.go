package models

import (
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/go-logr/logr"
	adkmodel "google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Default max tokens for Anthropic (required parameter)
const defaultAnthropicMaxTokens = 8192

// AnthropicModel implements model.LLM for Anthropic Claude models. Claude has
// no JSON output mode, so candidates served by it run in free-text mode.
type AnthropicModel struct {
	Model  string
	Client anthropic.Client
	Logger logr.Logger
}

var _ adkmodel.LLM = (*AnthropicModel)(nil)

// NewAnthropicModelWithLogger creates a new Anthropic model instance with a logger
func NewAnthropicModelWithLogger(modelName, baseURL string, opts ClientOptions, logger logr.Logger) (*AnthropicModel, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(opts.httpClient()),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	if logger.GetSink() != nil {
		logger.V(1).Info("Initialized Anthropic model", "model", modelName, "baseUrl", baseURL)
	}
	return &AnthropicModel{
		Model:  modelName,
		Client: anthropic.NewClient(reqOpts...),
		Logger: logger,
	}, nil
}

// anthropicStopReasonToGenai maps Anthropic stop_reason to genai.FinishReason.
func anthropicStopReasonToGenai(reason anthropic.StopReason) genai.FinishReason {
	switch reason {
	case anthropic.StopReasonMaxTokens:
		return genai.FinishReasonMaxTokens
	case anthropic.StopReasonRefusal:
		return genai.FinishReasonSafety
	default:
		return genai.FinishReasonStop
	}
}

// Name implements model.LLM.
func (m *AnthropicModel) Name() string {
	return "anthropic"
}

// GenerateContent implements model.LLM. Streaming is not used.
func (m *AnthropicModel) GenerateContent(ctx context.Context, req *adkmodel.LLMRequest, _ bool) iter.Seq2[*adkmodel.LLMResponse, error] {
	return func(yield func(*adkmodel.LLMResponse, error) bool) {
		modelName := m.Model
		if modelName == "" {
			modelName = req.Model
		}

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(modelName),
			MaxTokens: defaultAnthropicMaxTokens,
			Messages:  genaiContentsToAnthropicMessages(req.Contents),
		}
		if system := systemInstructionText(req.Config); system != "" {
			params.System = []anthropic.TextBlockParam{{Text: system}}
		}

		message, err := m.Client.Messages.New(ctx, params)
		if err != nil {
			yield(nil, fmt.Errorf("anthropic API error: %w", err))
			return
		}

		var sb strings.Builder
		for _, block := range message.Content {
			if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
				sb.WriteString(textBlock.Text)
			}
		}

		var usage *genai.GenerateContentResponseUsageMetadata
		if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
			usage = &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     int32(message.Usage.InputTokens),
				CandidatesTokenCount: int32(message.Usage.OutputTokens),
			}
		}

		yield(&adkmodel.LLMResponse{
			TurnComplete:  true,
			FinishReason:  anthropicStopReasonToGenai(message.StopReason),
			UsageMetadata: usage,
			Content: &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: sb.String()}},
			},
		}, nil)
	}
}

func genaiContentsToAnthropicMessages(contents []*genai.Content) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, content := range contents {
		text := contentText(content)
		if text == "" {
			continue
		}
		switch strings.TrimSpace(content.Role) {
		case "system":
			continue
		case "model", "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return messages
}

func createAnthropicLLM(_ context.Context, spec ModelSpec, opts ClientOptions, logger logr.Logger) (adkmodel.LLM, error) {
	return NewAnthropicModelWithLogger(spec.Identifier, spec.BaseURL, opts, logger)
}
