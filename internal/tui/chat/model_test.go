package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aichat/aichat/internal/engine"
	"github.com/aichat/aichat/internal/llm"
	"github.com/aichat/aichat/internal/model"
	"github.com/aichat/aichat/internal/store"
)

func newTestChatModel(t *testing.T, mock *llm.MockProvider) *Model {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	registry := llm.NewRegistry()
	registry.Register("mock", func(apiKey, mdl string) llm.Provider {
		return mock
	})

	eng := engine.New(st, registry)
	settings := model.Settings{APIProvider: "mock", APIKey: "sk-test", Model: "test-model"}
	if err := st.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	if err := eng.LoadCurrent(ctx); err != nil {
		t.Fatalf("failed to load conversation: %v", err)
	}
	return New(eng)
}

func TestSubmitStartsTurnAndClearsComposer(t *testing.T) {
	mock := llm.NewMockProvider("mock").AddTextResponse("hi there")
	m := newTestChatModel(t, mock)

	m.textarea.SetValue("hello")
	_, cmd := m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("expected a command batch from submit")
	}
	if got := m.textarea.Value(); got != "" {
		t.Errorf("expected composer cleared, got %q", got)
	}
	if m.events == nil {
		t.Error("expected an active event channel")
	}
	if !m.engine.Loading() {
		t.Error("expected the engine to be streaming")
	}
	m.engine.Cancel()
}

func TestSubmitEmptyComposerIsNoop(t *testing.T) {
	m := newTestChatModel(t, llm.NewMockProvider("mock"))

	m.textarea.SetValue("   ")
	_, _ = m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if m.engine.Loading() {
		t.Error("expected no turn for blank input")
	}
}

func TestEscCancelsStreaming(t *testing.T) {
	mock := llm.NewMockProvider("mock").AddTextResponse("slow reply")
	m := newTestChatModel(t, mock)

	m.textarea.SetValue("hello")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.engine.Loading() {
		t.Fatal("expected streaming to start")
	}

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.Loading() {
		t.Error("expected esc to cancel the stream")
	}
	if m.events != nil {
		t.Error("expected event channel dropped after cancel")
	}
}

func TestSlashSettingsOpensForm(t *testing.T) {
	m := newTestChatModel(t, llm.NewMockProvider("mock"))

	m.textarea.SetValue("/settings")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.settings.IsOpen() {
		t.Fatal("expected settings form open")
	}

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if m.settings.IsOpen() {
		t.Error("expected esc to close the settings form")
	}
}

func TestSlashUnknownCommandShowsNotice(t *testing.T) {
	m := newTestChatModel(t, llm.NewMockProvider("mock"))

	m.textarea.SetValue("/bogus")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if m.notice == "" {
		t.Error("expected a notice for an unknown command")
	}
	if m.engine.Loading() {
		t.Error("unknown command must not start a turn")
	}
}

func TestStreamDoneErrorNotPersisted(t *testing.T) {
	mock := llm.NewMockProvider("mock").AddError(errors.New("HTTP 401"))
	m := newTestChatModel(t, mock)
	ctx := context.Background()

	m.textarea.SetValue("failing question")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	src := m.events
	for ev := range src {
		m.handleStreamMsg(streamMsg{ev: ev, ok: true, src: src})
	}

	if m.engine.Loading() {
		t.Error("expected the engine idle after the error outcome")
	}
	if err := m.engine.LoadCurrent(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	for _, msg := range m.engine.Conversation().Messages {
		if msg.Role == model.RoleAssistant {
			t.Errorf("error outcome must not be stored, found %+v", msg)
		}
	}
}

func TestLateStreamEventAfterCancelIsDropped(t *testing.T) {
	mock := llm.NewMockProvider("mock").
		AddTurn(llm.MockTurn{Text: "slow reply", Delay: 5 * time.Second})
	m := newTestChatModel(t, mock)

	m.textarea.SetValue("hello")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	src := m.events

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if m.events != nil {
		t.Fatal("expected event channel dropped after cancel")
	}

	// A pump still blocked on the old channel can deliver one buffered
	// event after the cancel; it must not reach the engine or re-arm.
	late := engine.TurnEvent{Type: engine.TurnText, Text: "slow"}
	_, cmd := m.handleStreamMsg(streamMsg{ev: late, ok: true, src: src})

	if cmd != nil {
		t.Error("expected no command for an abandoned turn's event")
	}
	if m.engine.Pending() != "" {
		t.Errorf("expected no pending text from the dead turn, got %q", m.engine.Pending())
	}
	if m.engine.Loading() {
		t.Error("expected the engine to stay idle")
	}
}

func TestSubmitWhileStreamingIsSilentNoop(t *testing.T) {
	mock := llm.NewMockProvider("mock").
		AddTurn(llm.MockTurn{Text: "slow", Delay: 5 * time.Second})
	m := newTestChatModel(t, mock)

	m.textarea.SetValue("first")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.engine.Loading() {
		t.Fatal("expected streaming to start")
	}
	src := m.events

	m.textarea.SetValue("second")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if m.notice != "" {
		t.Errorf("expected no notice for a send mid-turn, got %q", m.notice)
	}
	if got := m.textarea.Value(); got != "second" {
		t.Errorf("expected composer text preserved, got %q", got)
	}
	if m.events != src {
		t.Error("expected the original turn's channel untouched")
	}
	m.engine.Cancel()
}

func TestSettingsFormApplyDefaults(t *testing.T) {
	f := NewSettingsForm()
	f.Open(model.Settings{APIProvider: "deepseek", APIKey: "sk-x", Model: "deepseek-chat"})

	// Blank out provider and model; Apply falls back to defaults
	f.inputs[fieldProvider].SetValue("")
	f.inputs[fieldModel].SetValue("")
	got := f.Apply(model.Settings{})

	if got.APIProvider != model.DefaultProvider {
		t.Errorf("expected default provider, got %q", got.APIProvider)
	}
	if got.Model != model.DefaultModel {
		t.Errorf("expected default model, got %q", got.Model)
	}
	if got.APIKey != "sk-x" {
		t.Errorf("expected key preserved, got %q", got.APIKey)
	}
}
