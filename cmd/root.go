package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aichat",
	Short: "Chat with LLM providers from the terminal",
	Long: `aichat is a terminal chat client for OpenAI, DeepSeek and Anthropic.

Conversations and settings are stored locally in SQLite, so you can pick up
where you left off.

Examples:
  aichat                          # start the interactive chat
  aichat conversations            # list saved conversations
  aichat settings                 # show current settings
  aichat settings setup           # run the setup wizard`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
