package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// DialogType represents the type of dialog
type DialogType int

const (
	DialogNone DialogType = iota
	DialogConversations
	DialogHelp
)

// DialogItem represents an item in a dialog list
type DialogItem struct {
	ID          string
	Label       string
	Description string
	Selected    bool
}

// DialogModel handles modal list overlays: the conversation picker and the
// help screen.
type DialogModel struct {
	dialogType DialogType
	items      []DialogItem
	filtered   []DialogItem
	cursor     int
	query      string
	title      string
	body       string
	width      int
	height     int
}

func NewDialogModel() *DialogModel {
	return &DialogModel{dialogType: DialogNone}
}

// SetSize updates the dimensions
func (d *DialogModel) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// IsOpen returns whether a dialog is open
func (d *DialogModel) IsOpen() bool {
	return d.dialogType != DialogNone
}

// Type returns the current dialog type
func (d *DialogModel) Type() DialogType {
	return d.dialogType
}

// Close closes the dialog
func (d *DialogModel) Close() {
	d.dialogType = DialogNone
	d.items = nil
	d.filtered = nil
	d.cursor = 0
	d.query = ""
	d.body = ""
}

// ShowConversations opens the conversation picker. The current conversation,
// if present, starts selected.
func (d *DialogModel) ShowConversations(items []DialogItem, currentID string) {
	d.dialogType = DialogConversations
	d.title = "Conversations"
	d.cursor = 0
	d.query = ""
	d.items = items

	for i := range d.items {
		if d.items[i].ID == currentID {
			d.items[i].Selected = true
			d.cursor = i
		}
	}
	d.filtered = d.items
}

// ShowHelp opens the help overlay with pre-rendered body text.
func (d *DialogModel) ShowHelp(body string) {
	d.dialogType = DialogHelp
	d.title = "Help"
	d.body = body
}

// Selected returns the item under the cursor, if any.
func (d *DialogModel) Selected() (DialogItem, bool) {
	if d.cursor < 0 || d.cursor >= len(d.filtered) {
		return DialogItem{}, false
	}
	return d.filtered[d.cursor], true
}

// MoveUp moves the cursor up
func (d *DialogModel) MoveUp() {
	if d.cursor > 0 {
		d.cursor--
	}
}

// MoveDown moves the cursor down
func (d *DialogModel) MoveDown() {
	if d.cursor < len(d.filtered)-1 {
		d.cursor++
	}
}

// AppendQuery adds typed characters to the filter query and re-filters.
func (d *DialogModel) AppendQuery(s string) {
	d.query += s
	d.applyFilter()
}

// BackspaceQuery removes the last query character and re-filters.
func (d *DialogModel) BackspaceQuery() {
	if d.query == "" {
		return
	}
	d.query = d.query[:len(d.query)-1]
	d.applyFilter()
}

type dialogItemSource []DialogItem

func (s dialogItemSource) String(i int) string { return s[i].Label }
func (s dialogItemSource) Len() int            { return len(s) }

func (d *DialogModel) applyFilter() {
	if d.query == "" {
		d.filtered = d.items
		d.cursor = 0
		return
	}
	matches := fuzzy.FindFrom(d.query, dialogItemSource(d.items))
	d.filtered = nil
	for _, match := range matches {
		d.filtered = append(d.filtered, d.items[match.Index])
	}
	d.cursor = 0
}

var (
	dialogBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1)

	dialogCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"})

	dialogDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "246"})
)

// View renders the open dialog, or the empty string when closed.
func (d *DialogModel) View() string {
	if !d.IsOpen() {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n")

	if d.dialogType == DialogHelp {
		b.WriteString(d.body)
		b.WriteString("\n")
		b.WriteString(dialogDimStyle.Render("esc close"))
		return dialogBorderStyle.Render(b.String())
	}

	if d.query != "" {
		b.WriteString(dialogDimStyle.Render("filter: " + d.query))
		b.WriteString("\n")
	}

	if len(d.filtered) == 0 {
		b.WriteString(dialogDimStyle.Render("no conversations"))
		b.WriteString("\n")
	}

	// Keep the cursor visible inside a bounded window
	maxRows := 10
	start := 0
	if d.cursor >= maxRows {
		start = d.cursor - maxRows + 1
	}
	end := start + maxRows
	if end > len(d.filtered) {
		end = len(d.filtered)
	}

	for i := start; i < end; i++ {
		item := d.filtered[i]
		line := item.Label
		if item.Description != "" {
			line += "  " + dialogDimStyle.Render(item.Description)
		}
		if i == d.cursor {
			b.WriteString(dialogCursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		if item.Selected {
			b.WriteString(dialogDimStyle.Render(" (current)"))
		}
		b.WriteString("\n")
	}

	b.WriteString(dialogDimStyle.Render("↑/↓ move · enter open · ctrl+d delete · esc close"))
	return dialogBorderStyle.Render(b.String())
}
