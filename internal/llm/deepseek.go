package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aichat/aichat/internal/model"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

var deepseekHTTPClient = &http.Client{}

// DeepSeekProvider implements Provider against DeepSeek's OpenAI-compatible
// HTTP API, parsing the server-sent-events stream by hand.
type DeepSeekProvider struct {
	apiKey  string
	model   string
	baseURL string
}

func NewDeepSeekProvider(apiKey, model string) *DeepSeekProvider {
	return &DeepSeekProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: deepseekBaseURL,
	}
}

func (p *DeepSeekProvider) Name() string {
	return fmt.Sprintf("DeepSeek (%s)", p.model)
}

type dsMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type dsChatRequest struct {
	Model    string      `json:"model"`
	Messages []dsMessage `json:"messages"`
	Stream   bool        `json:"stream"`
}

type dsChatResponse struct {
	Choices []struct {
		Delta   *dsMessage `json:"delta,omitempty"`
		Message *dsMessage `json:"message,omitempty"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) Send(ctx context.Context, messages []model.Message, streaming bool) Stream {
	return newFragmentStream(ctx, func(ctx context.Context, fragments chan<- string) error {
		chatReq := dsChatRequest{
			Model:    p.model,
			Messages: make([]dsMessage, 0, len(messages)),
			Stream:   streaming,
		}
		for _, msg := range messages {
			chatReq.Messages = append(chatReq.Messages, dsMessage{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		}

		body, err := json.Marshal(chatReq)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")
		if streaming {
			httpReq.Header.Set("Accept", "text/event-stream")
		}

		resp, err := deepseekHTTPClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("deepseek API request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		if !streaming {
			var chatResp dsChatResponse
			if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message == nil {
				return fmt.Errorf("deepseek returned no choices")
			}
			return emit(ctx, fragments, chatResp.Choices[0].Message.Content)
		}

		scanner := bufio.NewScanner(resp.Body)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var chatResp dsChatResponse
			if err := json.Unmarshal([]byte(data), &chatResp); err != nil {
				// Keepalives and partial payloads are skipped, not fatal.
				continue
			}
			if len(chatResp.Choices) == 0 || chatResp.Choices[0].Delta == nil {
				continue
			}
			if content := chatResp.Choices[0].Delta.Content; content != "" {
				if err := emit(ctx, fragments, content); err != nil {
					return err
				}
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("deepseek streaming error: %w", err)
		}
		return nil
	})
}

// ValidateKey checks the credential against the model listing endpoint.
func (p *DeepSeekProvider) ValidateKey(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := deepseekHTTPClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
