package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/aichat/aichat/internal/config"
	"github.com/aichat/aichat/internal/model"
)

// providerOption represents a provider choice in the setup wizard
type providerOption struct {
	name  string
	value string
	hint  string
}

func providerOptions(names []string) []providerOption {
	labels := map[string]providerOption{
		"openai":    {name: "OpenAI", hint: "or set OPENAI_API_KEY"},
		"deepseek":  {name: "DeepSeek", hint: "or set DEEPSEEK_API_KEY"},
		"anthropic": {name: "Anthropic", hint: "or set ANTHROPIC_API_KEY"},
	}
	options := make([]providerOption, 0, len(names))
	for _, name := range names {
		opt, ok := labels[name]
		if !ok {
			opt = providerOption{name: name}
		}
		opt.value = name
		options = append(options, opt)
	}
	return options
}

// RunSetupWizard walks a first-time user through provider, key and model
// selection and returns the resulting settings.
func RunSetupWizard(providers []string, current model.Settings) (model.Settings, error) {
	fmt.Print("Welcome to aichat! Let's get you set up.\n\n")

	var options []huh.Option[string]
	for _, p := range providerOptions(providers) {
		label := p.name
		if config.APIKeyFromEnv(p.value) != "" {
			label += " ✓"
		}
		options = append(options, huh.NewOption(label, p.value))
	}

	settings := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which provider do you want to use?").
				Description("Providers marked ✓ already have a key in the environment").
				Options(options...).
				Value(&settings.APIProvider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				Description("Leave blank to use the environment variable").
				EchoMode(huh.EchoModePassword).
				Value(&settings.APIKey),
			huh.NewInput().
				Title("Model").
				Placeholder(model.DefaultModel).
				Value(&settings.Model),
		),
	)

	if err := form.Run(); err != nil {
		return model.Settings{}, fmt.Errorf("setup cancelled: %w", err)
	}

	if settings.Model == "" {
		settings.Model = model.DefaultModel
	}
	return settings, nil
}
