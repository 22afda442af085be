// Package engine owns the per-conversation request lifecycle: it appends and
// persists messages, resolves the active provider, runs the streaming call off
// the foreground context, and marshals fragments back for ordered application.
package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/aichat/aichat/internal/llm"
	"github.com/aichat/aichat/internal/model"
	"github.com/aichat/aichat/internal/store"
)

var (
	// ErrBusy signals a send while a turn is already in flight. Callers
	// treat it as a no-op: the second attempt is dropped, not queued.
	ErrBusy = errors.New("a response is already in progress")

	// ErrMissingAPIKey is the local precondition failure raised before any
	// network call when no credential is configured.
	ErrMissingAPIKey = errors.New("no API key configured (set one in settings)")

	// ErrEmptyMessage rejects blank user input.
	ErrEmptyMessage = errors.New("empty message")
)

// TurnEventType identifies the kind of event a turn produces.
type TurnEventType string

const (
	// TurnText carries the full accumulated reply so far. Each event
	// supersedes the previous one; consumers replace, never append.
	TurnText TurnEventType = "text"
	// TurnDone is the terminal event carrying the complete reply.
	TurnDone TurnEventType = "done"
)

// TurnEvent is handed from the background stream reader to the foreground
// consumer, which must pass every event to Apply in arrival order.
type TurnEvent struct {
	Type TurnEventType
	Text string
	Err  bool // TurnDone only: Text is an in-band error, not a reply
}

// Engine orchestrates conversation turns. It is owned by a single foreground
// context: all methods must be called from that context, and only Apply
// mutates conversation state in response to stream progress.
type Engine struct {
	store    store.Store
	registry *llm.Registry

	// KeyFallback supplies a credential when the stored settings have none
	// (typically from the environment). Optional.
	KeyFallback func(provider string) string

	conv    *model.Conversation
	loading bool
	pending string
	cancel  context.CancelFunc
}

func New(st store.Store, registry *llm.Registry) *Engine {
	return &Engine{
		store:    st,
		registry: registry,
	}
}

// Conversation returns the current conversation.
func (e *Engine) Conversation() *model.Conversation {
	return e.conv
}

// Loading reports whether a turn is in flight.
func (e *Engine) Loading() bool {
	return e.loading
}

// Pending returns the in-progress assistant reply accumulated so far.
func (e *Engine) Pending() string {
	return e.pending
}

// Settings reads the current settings, applying the credential fallback.
func (e *Engine) Settings(ctx context.Context) (model.Settings, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if settings.APIKey == "" && e.KeyFallback != nil {
		settings.APIKey = e.KeyFallback(settings.APIProvider)
	}
	return settings, nil
}

// UpdateSettings persists the singleton settings record.
func (e *Engine) UpdateSettings(ctx context.Context, settings model.Settings) error {
	return e.store.SaveSettings(ctx, settings)
}

// ResolveProvider builds the provider adapter for the given settings.
func (e *Engine) ResolveProvider(settings model.Settings) (llm.Provider, error) {
	return e.registry.Resolve(settings.APIProvider, settings.APIKey, settings.Model)
}

// LoadCurrent loads the conversation referenced by settings, creating one
// lazily when none is recorded. Called once at session start.
func (e *Engine) LoadCurrent(ctx context.Context) error {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return err
	}

	if settings.CurrentConversationID != "" {
		conv, err := e.store.Get(ctx, settings.CurrentConversationID)
		if err != nil {
			return err
		}
		e.conv = conv
	} else {
		e.conv = model.NewConversation()
	}

	// The store hands back a fresh conversation for a missing id; keep the
	// settings pointing at whatever we actually hold.
	if settings.CurrentConversationID != e.conv.ID {
		settings.CurrentConversationID = e.conv.ID
		return e.store.SaveSettings(ctx, settings)
	}
	return nil
}

// Send starts a conversation turn: it appends and persists the user message,
// resolves the active provider from settings, and launches the streaming call
// in the background. The returned channel delivers fragments and the terminal
// outcome in order; the consumer must feed each event to Apply.
func (e *Engine) Send(ctx context.Context, text string) (<-chan TurnEvent, error) {
	if e.loading {
		return nil, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	e.conv.Append(model.NewUserMessage(text))
	e.conv.DeriveTitle()
	if err := e.store.Save(ctx, e.conv); err != nil {
		return nil, err
	}

	settings, err := e.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	provider, err := e.registry.Resolve(settings.APIProvider, settings.APIKey, settings.Model)
	if err != nil {
		return nil, err
	}

	// The background goroutine works on a snapshot; settings edits made
	// mid-stream are not observed.
	snapshot := make([]model.Message, len(e.conv.Messages))
	copy(snapshot, e.conv.Messages)

	streamCtx, cancel := context.WithCancel(ctx)
	e.loading = true
	e.pending = ""
	e.cancel = cancel

	events := make(chan TurnEvent, 16)
	go streamTurn(streamCtx, provider, snapshot, events)
	return events, nil
}

// streamTurn drives the provider stream and forwards ordered events. It never
// touches engine state.
func streamTurn(ctx context.Context, provider llm.Provider, messages []model.Message, events chan<- TurnEvent) {
	defer close(events)

	stream := provider.Send(ctx, messages, true)
	defer stream.Close()

	var acc strings.Builder
	var lastFragment string
	for {
		frag, err := stream.Recv()
		if err != nil {
			break
		}
		lastFragment = frag
		acc.WriteString(frag)
		select {
		case events <- TurnEvent{Type: TurnText, Text: acc.String()}:
		case <-ctx.Done():
			return
		}
	}

	failed := llm.IsErrorFragment(lastFragment)
	select {
	case events <- TurnEvent{Type: TurnDone, Text: acc.String(), Err: failed}:
	case <-ctx.Done():
	}
}

// Apply folds one turn event into engine state. It must be called from the
// foreground context for every event, in arrival order. On a successful
// terminal event the assistant message is appended and persisted; an in-band
// error outcome is surfaced to the caller but never persisted. Events arriving
// after the turn was cancelled are ignored.
func (e *Engine) Apply(ctx context.Context, ev TurnEvent) error {
	// Events buffered before a Cancel (or a conversation switch, which
	// cancels) belong to a dead turn and must not touch whichever
	// conversation is current now.
	if !e.loading {
		return nil
	}
	switch ev.Type {
	case TurnText:
		e.pending = ev.Text
		return nil
	case TurnDone:
		e.loading = false
		e.pending = ""
		e.cancel = nil
		if ev.Err {
			return nil
		}
		e.conv.Append(model.NewAssistantMessage(ev.Text))
		return e.store.Save(ctx, e.conv)
	}
	return nil
}

// Cancel stops the in-flight turn, if any, and returns the engine to idle.
// The interrupted turn persists no assistant message.
func (e *Engine) Cancel() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.loading = false
	e.pending = ""
}

// NewConversation abandons any in-flight turn, creates and persists a fresh
// conversation, and records it as current.
func (e *Engine) NewConversation(ctx context.Context) error {
	e.Cancel()
	e.conv = model.NewConversation()
	if err := e.store.Save(ctx, e.conv); err != nil {
		return err
	}
	return e.setCurrent(ctx, e.conv.ID)
}

// SwitchConversation makes a stored conversation current.
func (e *Engine) SwitchConversation(ctx context.Context, id string) error {
	e.Cancel()
	conv, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	e.conv = conv
	return e.setCurrent(ctx, conv.ID)
}

// DeleteConversation removes a stored conversation. Deleting the current one
// replaces it with a fresh empty conversation.
func (e *Engine) DeleteConversation(ctx context.Context, id string) error {
	if e.conv != nil && id == e.conv.ID {
		e.Cancel()
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	if e.conv != nil && id == e.conv.ID {
		e.conv = model.NewConversation()
		return e.setCurrent(ctx, e.conv.ID)
	}
	return nil
}

// ClearMessages empties the current conversation's transcript and persists it.
func (e *Engine) ClearMessages(ctx context.Context) error {
	e.Cancel()
	e.conv.Messages = []model.Message{}
	return e.store.Save(ctx, e.conv)
}

// List returns all stored conversations, newest first.
func (e *Engine) List(ctx context.Context) ([]model.Conversation, error) {
	return e.store.List(ctx)
}

func (e *Engine) setCurrent(ctx context.Context, id string) error {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return err
	}
	settings.CurrentConversationID = id
	return e.store.SaveSettings(ctx, settings)
}
