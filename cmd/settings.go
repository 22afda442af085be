package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aichat/aichat/internal/llm"
	"github.com/aichat/aichat/internal/ui"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show current settings",
	RunE:    runSettingsShow,
}

var settingsSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the interactive setup wizard",
	RunE:  runSettingsSetup,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a settings field (provider, key or model)",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configured API key against the provider",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsSetupCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := eng.Settings(ctx)
	if err != nil {
		return err
	}

	key := "(not set)"
	if settings.APIKey != "" {
		key = maskKey(settings.APIKey)
	}
	fmt.Printf("Provider: %s\n", settings.APIProvider)
	fmt.Printf("Model:    %s\n", settings.Model)
	fmt.Printf("API key:  %s\n", key)
	if settings.CurrentConversationID != "" {
		fmt.Printf("Current:  %s\n", settings.CurrentConversationID)
	}
	return nil
}

func runSettingsSetup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	current, err := eng.Settings(ctx)
	if err != nil {
		return err
	}

	settings, err := ui.RunSetupWizard(llm.NewRegistry().Names(), current)
	if err != nil {
		return err
	}
	if err := eng.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Printf("Settings saved: %s / %s\n", settings.APIProvider, settings.Model)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := eng.Settings(ctx)
	if err != nil {
		return err
	}

	field, value := strings.ToLower(args[0]), args[1]
	switch field {
	case "provider":
		settings.APIProvider = value
	case "key", "api_key":
		settings.APIKey = value
	case "model":
		settings.Model = value
	default:
		return fmt.Errorf("unknown field %q (want provider, key or model)", args[0])
	}

	if err := eng.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Printf("Set %s\n", field)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := eng.Settings(ctx)
	if err != nil {
		return err
	}
	if settings.APIKey == "" {
		return fmt.Errorf("no API key configured; run 'aichat settings setup'")
	}

	provider, err := eng.ResolveProvider(settings)
	if err != nil {
		return err
	}
	if !provider.ValidateKey(ctx) {
		return fmt.Errorf("key was rejected by %s", provider.Name())
	}
	fmt.Printf("Key is valid for %s\n", provider.Name())
	return nil
}

// maskKey shows just enough of a key to recognize it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}
