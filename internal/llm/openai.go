package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aichat/aichat/internal/model"
)

// OpenAIProvider implements Provider using the OpenAI SDK's native streaming.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("OpenAI (%s)", p.model)
}

func (p *OpenAIProvider) Send(ctx context.Context, messages []model.Message, streaming bool) Stream {
	return newFragmentStream(ctx, func(ctx context.Context, fragments chan<- string) error {
		params := openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(p.model),
			Messages: buildOpenAIMessages(messages),
		}

		if !streaming {
			resp, err := p.client.Chat.Completions.New(ctx, params)
			if err != nil {
				return fmt.Errorf("openai API error: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("openai returned no choices")
			}
			return emit(ctx, fragments, resp.Choices[0].Message.Content)
		}

		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			// Role-only and stop chunks carry no delta and are skipped.
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if err := emit(ctx, fragments, delta); err != nil {
					return err
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("openai streaming error: %w", err)
		}
		return nil
	})
}

// ValidateKey performs a lightweight authenticated call (model listing).
func (p *OpenAIProvider) ValidateKey(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()
	_, err := p.client.Models.List(ctx)
	return err == nil
}

func buildOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
