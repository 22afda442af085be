package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aichat/aichat/internal/engine"
	"github.com/aichat/aichat/internal/model"
	"github.com/aichat/aichat/internal/ui"
)

// streamMsg carries one turn event from the background stream. ok is false
// when the channel closed without a terminal event (cancelled turn). src
// identifies the channel the pump read from, so deliveries that raced with a
// cancel or conversation switch can be told apart from the live turn.
type streamMsg struct {
	ev  engine.TurnEvent
	ok  bool
	src <-chan engine.TurnEvent
}

// validateMsg carries the outcome of an async key check after saving settings.
type validateMsg struct {
	ok  bool
	err error
}

// convListMsg carries the stored conversations for the picker dialog.
type convListMsg struct {
	items []DialogItem
	err   error
}

// noticeExpireMsg clears a transient notice line.
type noticeExpireMsg struct{}

// Model is the top-level TUI model. It owns presentation state only; all
// conversation state lives in the engine and is mutated through it.
type Model struct {
	engine   *engine.Engine
	ctx      context.Context
	textarea textarea.Model
	spinner  spinner.Model
	dialog   *DialogModel
	settings *SettingsForm

	events   <-chan engine.TurnEvent
	width    int
	notice   string
	quitting bool
}

// New creates the chat model. The engine must already have its current
// conversation loaded.
func New(eng *engine.Engine) *Model {
	ta := textarea.New()
	ta.Placeholder = "Send a message (/ for commands)"
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.CharLimit = 0
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		engine:   eng,
		ctx:      context.Background(),
		textarea: ta,
		spinner:  s,
		dialog:   NewDialogModel(),
		settings: NewSettingsForm(),
		width:    80,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if transcript := m.renderTranscript(); transcript != "" {
		cmds = append(cmds, tea.Println(transcript))
	}
	return tea.Batch(cmds...)
}

// waitForTurn reads one event from the turn channel and delivers it as a
// message. Re-issued after every event until the terminal one arrives.
func waitForTurn(events <-chan engine.TurnEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return streamMsg{ev: ev, ok: ok, src: events}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(msg.Width - 2)
		m.dialog.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.engine.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case streamMsg:
		return m.handleStreamMsg(msg)

	case validateMsg:
		if m.settings.IsOpen() {
			switch {
			case msg.err != nil:
				m.settings.SetStatus("Saved. Key check failed: " + msg.err.Error())
			case msg.ok:
				m.settings.SetStatus("Saved. Key is valid.")
			default:
				m.settings.SetStatus("Saved. Key was rejected by the provider.")
			}
		}
		return m, nil

	case convListMsg:
		if msg.err != nil {
			return m, m.showNotice("Error: " + msg.err.Error())
		}
		m.dialog.ShowConversations(msg.items, m.engine.Conversation().ID)
		return m, nil

	case noticeExpireMsg:
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleStreamMsg(msg streamMsg) (tea.Model, tea.Cmd) {
	if m.events == nil || msg.src != m.events {
		// Late delivery from an abandoned turn's pump; drop it instead of
		// re-arming the pump on a dead channel.
		return m, nil
	}
	if !msg.ok {
		// Channel closed without a terminal event: the turn was cancelled.
		m.events = nil
		m.engine.Cancel()
		return m, nil
	}

	ev := msg.ev
	if err := m.engine.Apply(m.ctx, ev); err != nil {
		m.events = nil
		return m, m.showNotice("Error: " + err.Error())
	}

	if ev.Type == engine.TurnDone {
		m.events = nil
		if ev.Err {
			return m, tea.Println(errorStyle.Render("⚠ " + ev.Text))
		}
		out := assistantLabelStyle.Render("Assistant") + "\n" + m.renderMarkdown(ev.Text)
		return m, tea.Println(out)
	}
	return m, waitForTurn(m.events)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.settings.IsOpen() {
		return m.handleSettingsKey(msg)
	}
	if m.dialog.IsOpen() {
		return m.handleDialogKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.engine.Loading() {
			m.engine.Cancel()
			m.events = nil
			return m, m.showNotice("Response cancelled.")
		}
		return m, nil

	case "ctrl+n":
		return m.cmdNew()

	case "ctrl+l":
		return m, m.loadConversationsCmd()

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.settings.Close()
		return m, nil
	case "tab", "down":
		m.settings.Next()
		return m, nil
	case "shift+tab", "up":
		m.settings.Prev()
		return m, nil
	case "enter":
		return m.saveSettings()
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	focused := m.settings.Focused()
	*focused, cmd = focused.Update(msg)
	return m, cmd
}

func (m *Model) saveSettings() (tea.Model, tea.Cmd) {
	settings, err := m.engine.Settings(m.ctx)
	if err != nil {
		m.settings.SetStatus("Error: " + err.Error())
		return m, nil
	}
	settings = m.settings.Apply(settings)
	if err := m.engine.UpdateSettings(m.ctx, settings); err != nil {
		m.settings.SetStatus("Error: " + err.Error())
		return m, nil
	}
	m.settings.SetStatus("Saved. Checking key...")
	return m, m.validateKeyCmd(settings)
}

// validateKeyCmd checks the saved credential in the background so the form
// stays responsive.
func (m *Model) validateKeyCmd(settings model.Settings) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		provider, err := eng.ResolveProvider(settings)
		if err != nil {
			return validateMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return validateMsg{ok: provider.ValidateKey(ctx)}
	}
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.dialog.Close()
		return m, nil
	case "up", "ctrl+p":
		m.dialog.MoveUp()
		return m, nil
	case "down", "ctrl+n":
		m.dialog.MoveDown()
		return m, nil
	case "backspace":
		m.dialog.BackspaceQuery()
		return m, nil
	case "ctrl+d":
		if item, ok := m.dialog.Selected(); ok && m.dialog.Type() == DialogConversations {
			m.dialog.Close()
			return m.cmdDelete([]string{item.ID})
		}
		return m, nil
	case "enter":
		if m.dialog.Type() != DialogConversations {
			m.dialog.Close()
			return m, nil
		}
		item, ok := m.dialog.Selected()
		m.dialog.Close()
		if !ok {
			return m, nil
		}
		if err := m.engine.SwitchConversation(m.ctx, item.ID); err != nil {
			return m, m.showNotice("Error: " + err.Error())
		}
		m.events = nil
		if transcript := m.renderTranscript(); transcript != "" {
			return m, tea.Println(transcript)
		}
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	if msg.Type == tea.KeyRunes {
		m.dialog.AppendQuery(string(msg.Runes))
	}
	return m, nil
}

// submit sends the composer content: slash commands are dispatched locally,
// anything else starts a conversation turn.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.dispatchCommand(text)
	}

	events, err := m.engine.Send(m.ctx, text)
	if err != nil {
		if errors.Is(err, engine.ErrBusy) {
			// A second send mid-turn is dropped, not queued; the composer
			// keeps its text.
			return m, nil
		}
		return m, m.showNotice("Error: " + err.Error())
	}
	m.events = events
	m.textarea.SetValue("")

	echo := userLabelStyle.Render("You") + "\n" + text
	return m, tea.Batch(tea.Println(echo), m.spinner.Tick, waitForTurn(events))
}

func (m *Model) dispatchCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(parts) == 0 {
		return m, nil
	}
	matches := FilterCommands(parts[0])
	if len(matches) == 0 {
		return m, m.showNotice(fmt.Sprintf("Unknown command /%s. Try /help.", parts[0]))
	}
	cmd, args := matches[0], parts[1:]
	m.textarea.SetValue("")

	switch cmd.Name {
	case "help":
		return m.cmdHelp()
	case "new":
		return m.cmdNew()
	case "conversations":
		return m, m.loadConversationsCmd()
	case "settings":
		return m.cmdSettings()
	case "clear":
		return m.cmdClear()
	case "delete":
		return m.cmdDelete(args)
	case "quit":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) cmdHelp() (tea.Model, tea.Cmd) {
	var b strings.Builder
	for _, cmd := range AllCommands() {
		b.WriteString(cmd.Usage)
		if len(cmd.Aliases) > 0 {
			b.WriteString(" (" + strings.Join(cmd.Aliases, ", ") + ")")
		}
		b.WriteString("\n  " + cmd.Description + "\n")
	}
	b.WriteString("\nEnter send · Esc cancel response · Ctrl+N new · Ctrl+L conversations · Ctrl+C quit")
	m.dialog.ShowHelp(b.String())
	return m, nil
}

func (m *Model) cmdNew() (tea.Model, tea.Cmd) {
	if err := m.engine.NewConversation(m.ctx); err != nil {
		return m, m.showNotice("Error: " + err.Error())
	}
	m.events = nil
	return m, tea.Println(statusStyle.Render("Started a new conversation."))
}

func (m *Model) cmdSettings() (tea.Model, tea.Cmd) {
	settings, err := m.engine.Settings(m.ctx)
	if err != nil {
		return m, m.showNotice("Error: " + err.Error())
	}
	m.settings.Open(settings)
	return m, nil
}

func (m *Model) cmdClear() (tea.Model, tea.Cmd) {
	if err := m.engine.ClearMessages(m.ctx); err != nil {
		return m, m.showNotice("Error: " + err.Error())
	}
	m.events = nil
	return m, tea.Println(statusStyle.Render("Conversation cleared."))
}

func (m *Model) cmdDelete(args []string) (tea.Model, tea.Cmd) {
	id := m.engine.Conversation().ID
	if len(args) > 0 {
		id = args[0]
	}
	if err := m.engine.DeleteConversation(m.ctx, id); err != nil {
		return m, m.showNotice("Error: " + err.Error())
	}
	// Deleting another conversation leaves the current turn running.
	if !m.engine.Loading() {
		m.events = nil
	}
	return m, tea.Println(statusStyle.Render("Deleted conversation " + model.ShortID(id) + "."))
}

// loadConversationsCmd fetches the stored conversations off the update loop.
func (m *Model) loadConversationsCmd() tea.Cmd {
	eng := m.engine
	ctx := m.ctx
	return func() tea.Msg {
		convs, err := eng.List(ctx)
		if err != nil {
			return convListMsg{err: err}
		}
		items := make([]DialogItem, 0, len(convs))
		for _, conv := range convs {
			items = append(items, DialogItem{
				ID:          conv.ID,
				Label:       conv.Title,
				Description: fmt.Sprintf("%s · %d messages", model.ShortID(conv.ID), len(conv.Messages)),
			})
		}
		return convListMsg{items: items}
	}
}

// showNotice displays a transient one-line message under the composer.
func (m *Model) showNotice(text string) tea.Cmd {
	m.notice = text
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpireMsg{}
	})
}

func (m *Model) renderMarkdown(content string) string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return ui.RenderMarkdown(content, width)
}

// renderTranscript renders the current conversation history for scrollback.
func (m *Model) renderTranscript() string {
	conv := m.engine.Conversation()
	if conv == nil || len(conv.Messages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(conv.Title) + "\n")
	for _, msg := range conv.Messages {
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(userLabelStyle.Render("You") + "\n" + msg.Content + "\n")
		case model.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("Assistant") + "\n" + m.renderMarkdown(msg.Content) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.settings.IsOpen() {
		return m.settings.View() + "\n"
	}
	if m.dialog.IsOpen() {
		return m.dialog.View() + "\n"
	}

	var b strings.Builder
	if m.engine.Loading() {
		b.WriteString(m.spinner.View())
		if pending := m.engine.Pending(); pending != "" {
			b.WriteString("\n" + m.renderMarkdown(pending))
		} else {
			b.WriteString(" Thinking...")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render("enter send · / commands · ctrl+c quit"))
	return b.String()
}
