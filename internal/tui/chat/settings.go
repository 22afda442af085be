package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/aichat/aichat/internal/model"
)

const (
	fieldProvider = iota
	fieldAPIKey
	fieldModel
	fieldCount
)

// SettingsForm is the inline editor for provider, API key and model.
type SettingsForm struct {
	inputs  []textinput.Model
	focused int
	open    bool
	status  string
}

func NewSettingsForm() *SettingsForm {
	provider := textinput.New()
	provider.Placeholder = model.DefaultProvider
	provider.Prompt = "Provider: "
	provider.CharLimit = 32

	apiKey := textinput.New()
	apiKey.Placeholder = "sk-..."
	apiKey.Prompt = "API key:  "
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '*'

	mdl := textinput.New()
	mdl.Placeholder = model.DefaultModel
	mdl.Prompt = "Model:    "
	mdl.CharLimit = 64

	return &SettingsForm{
		inputs: []textinput.Model{provider, apiKey, mdl},
	}
}

// IsOpen returns whether the form is visible.
func (f *SettingsForm) IsOpen() bool {
	return f.open
}

// Open populates the form from current settings and focuses the first field.
func (f *SettingsForm) Open(settings model.Settings) {
	f.inputs[fieldProvider].SetValue(settings.APIProvider)
	f.inputs[fieldAPIKey].SetValue(settings.APIKey)
	f.inputs[fieldModel].SetValue(settings.Model)
	f.status = ""
	f.open = true
	f.focus(0)
}

// Close hides the form without saving.
func (f *SettingsForm) Close() {
	f.open = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// Next moves focus to the following field, wrapping around.
func (f *SettingsForm) Next() {
	f.focus((f.focused + 1) % fieldCount)
}

// Prev moves focus to the preceding field, wrapping around.
func (f *SettingsForm) Prev() {
	f.focus((f.focused + fieldCount - 1) % fieldCount)
}

func (f *SettingsForm) focus(i int) {
	f.focused = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// Focused returns the input that currently has focus.
func (f *SettingsForm) Focused() *textinput.Model {
	return &f.inputs[f.focused]
}

// SetStatus sets the line shown under the form (validation outcome).
func (f *SettingsForm) SetStatus(status string) {
	f.status = status
}

// Apply folds the form values into settings. Blank provider and model fall
// back to the defaults.
func (f *SettingsForm) Apply(settings model.Settings) model.Settings {
	settings.APIProvider = strings.TrimSpace(f.inputs[fieldProvider].Value())
	if settings.APIProvider == "" {
		settings.APIProvider = model.DefaultProvider
	}
	settings.APIKey = strings.TrimSpace(f.inputs[fieldAPIKey].Value())
	settings.Model = strings.TrimSpace(f.inputs[fieldModel].Value())
	if settings.Model == "" {
		settings.Model = model.DefaultModel
	}
	return settings
}

// View renders the form.
func (f *SettingsForm) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n")
	for i := range f.inputs {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	if f.status != "" {
		b.WriteString(statusStyle.Render(f.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab next field · enter save · esc cancel"))
	return dialogBorderStyle.Render(b.String())
}
