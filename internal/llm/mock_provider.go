package llm

import (
	"context"
	"sync"
	"time"

	"github.com/aichat/aichat/internal/model"
)

// MockTurn represents a single scripted response from the mock provider.
type MockTurn struct {
	Text  string        // Text to emit (chunked for realistic streaming)
	Delay time.Duration // Optional delay before responding
	Error error         // Fail the turn with this error instead of responding
}

// MockProvider is a configurable provider for testing. It returns scripted
// responses and records all requests for verification.
type MockProvider struct {
	name      string
	valid     bool
	turns     []MockTurn
	turnIndex int
	Requests  [][]model.Message // Recorded message snapshots for verification
	mu        sync.Mutex
}

// NewMockProvider creates a new mock provider with the given name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name, valid: true}
}

func (m *MockProvider) Name() string {
	return m.name
}

// AddTurn adds a response turn and returns the provider for chaining.
func (m *MockProvider) AddTurn(t MockTurn) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, t)
	return m
}

// AddTextResponse is a convenience method to add a simple text response.
func (m *MockProvider) AddTextResponse(text string) *MockProvider {
	return m.AddTurn(MockTurn{Text: text})
}

// AddError adds a turn that fails with the given error.
func (m *MockProvider) AddError(err error) *MockProvider {
	return m.AddTurn(MockTurn{Error: err})
}

// SetValid controls what ValidateKey reports.
func (m *MockProvider) SetValid(valid bool) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = valid
	return m
}

// Reset clears recorded requests and resets the turn index.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnIndex = 0
	m.Requests = nil
}

func (m *MockProvider) Send(ctx context.Context, messages []model.Message, streaming bool) Stream {
	m.mu.Lock()
	snapshot := make([]model.Message, len(messages))
	copy(snapshot, messages)
	m.Requests = append(m.Requests, snapshot)

	var turn MockTurn
	if m.turnIndex < len(m.turns) {
		turn = m.turns[m.turnIndex]
		m.turnIndex++
	}
	m.mu.Unlock()

	return newFragmentStream(ctx, func(ctx context.Context, fragments chan<- string) error {
		if turn.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(turn.Delay):
			}
		}
		if turn.Error != nil {
			return turn.Error
		}
		if !streaming {
			return emit(ctx, fragments, turn.Text)
		}
		for _, chunk := range chunkText(turn.Text, 10) {
			if err := emit(ctx, fragments, chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *MockProvider) ValidateKey(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}

// chunkText splits text into chunks of approximately the given size,
// breaking at word boundaries when possible.
func chunkText(text string, chunkSize int) []string {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= chunkSize {
			chunks = append(chunks, text)
			break
		}

		breakPoint := chunkSize
		for i := chunkSize; i > chunkSize/2; i-- {
			if text[i] == ' ' {
				breakPoint = i + 1 // include the space in current chunk
				break
			}
		}

		chunks = append(chunks, text[:breakPoint])
		text = text[breakPoint:]
	}
	return chunks
}
