package model

// Defaults for a settings record that has never been saved.
const (
	DefaultProvider = "openai"
	DefaultModel    = "gpt-3.5-turbo"
)

// Settings is the single process-wide settings record. Exactly one logical
// instance exists, persisted under a reserved key distinct from any
// conversation id.
type Settings struct {
	APIProvider           string `json:"api_provider"`
	APIKey                string `json:"api_key"`
	Model                 string `json:"model"`
	CurrentConversationID string `json:"current_conversation_id"`
}

// DefaultSettings returns the settings used before any record is saved.
func DefaultSettings() Settings {
	return Settings{
		APIProvider: DefaultProvider,
		Model:       DefaultModel,
	}
}
