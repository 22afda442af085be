package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aichat/aichat/internal/model"
)

const anthropicMaxTokens = 4096

// AnthropicProvider implements Provider using the Anthropic SDK's native
// streaming messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		client: &client,
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string {
	return fmt.Sprintf("Anthropic (%s)", p.model)
}

func (p *AnthropicProvider) Send(ctx context.Context, messages []model.Message, streaming bool) Stream {
	return newFragmentStream(ctx, func(ctx context.Context, fragments chan<- string) error {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: anthropicMaxTokens,
			Messages:  buildAnthropicMessages(messages),
		}

		if !streaming {
			msg, err := p.client.Messages.New(ctx, params)
			if err != nil {
				return fmt.Errorf("anthropic API error: %w", err)
			}
			var reply strings.Builder
			for _, block := range msg.Content {
				if block.Type == "text" {
					reply.WriteString(block.Text)
				}
			}
			return emit(ctx, fragments, reply.String())
		}

		stream := p.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			event := stream.Current()
			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if deltaVariant.Text != "" {
						if err := emit(ctx, fragments, deltaVariant.Text); err != nil {
							return err
						}
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("anthropic streaming error: %w", err)
		}
		return nil
	})
}

// ValidateKey performs a lightweight authenticated call (model listing).
func (p *AnthropicProvider) ValidateKey(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()
	_, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	return err == nil
}

func buildAnthropicMessages(messages []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case model.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(block))
		default:
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
