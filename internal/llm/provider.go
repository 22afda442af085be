// Package llm normalizes the streaming wire formats of several LLM backends
// into a uniform fragment-stream contract.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aichat/aichat/internal/model"
)

// validateTimeout bounds the credential check round trip.
const validateTimeout = 5 * time.Second

// errorPrefix marks the in-band error fragment a failed send produces.
const errorPrefix = "Error: "

// Provider adapts one backend to the uniform fragment-stream contract.
//
// Send never fails out of band: any transport or protocol error is delivered
// as a single trailing fragment of the form "Error: <message>", so callers
// treat success and failure uniformly as "more text arrived, then the stream
// ended". With streaming=false the stream yields exactly one fragment holding
// the full reply.
type Provider interface {
	Name() string
	Send(ctx context.Context, messages []model.Message, streaming bool) Stream
	ValidateKey(ctx context.Context) bool
}

// ErrorFragment encodes a failure as an in-band fragment.
func ErrorFragment(err error) string {
	return errorPrefix + err.Error()
}

// IsErrorFragment reports whether a fragment carries an in-band error.
func IsErrorFragment(frag string) bool {
	return strings.HasPrefix(frag, errorPrefix)
}

// Factory constructs a provider from a credential and model name.
type Factory func(apiKey, model string) Provider

// UnknownProviderError is returned by Resolve for an unregistered identifier.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.Provider)
}

// Registry maps provider identifiers to adapter factories. It is the sole
// lookup point for backends; no other component inspects identifiers.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds a registry with the built-in backends registered.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register("openai", func(apiKey, model string) Provider {
		return NewOpenAIProvider(apiKey, model)
	})
	r.Register("deepseek", func(apiKey, model string) Provider {
		return NewDeepSeekProvider(apiKey, model)
	})
	r.Register("anthropic", func(apiKey, model string) Provider {
		return NewAnthropicProvider(apiKey, model)
	})
	return r
}

// Register adds or replaces a backend factory.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Resolve constructs the adapter for a provider identifier.
func (r *Registry) Resolve(name, apiKey, model string) (Provider, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, &UnknownProviderError{Provider: name}
	}
	return factory(apiKey, model), nil
}

// Names returns the registered provider identifiers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
