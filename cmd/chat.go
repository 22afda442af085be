package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aichat/aichat/internal/tui/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive TUI chat session.

Keyboard shortcuts:
  Enter        - Send message
  Esc          - Cancel streaming response
  Ctrl+N       - New conversation
  Ctrl+L       - Browse conversations
  Ctrl+C       - Quit

Slash commands:
  /help          - Show help
  /new           - Start a new conversation
  /conversations - Browse saved conversations
  /settings      - Edit provider, API key and model
  /clear         - Clear the current conversation
  /delete [id]   - Delete a conversation
  /quit          - Exit chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	// Inline mode - no alt screen, replies land in scrollback
	p := tea.NewProgram(chat.New(eng))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chat: %w", err)
	}
	return nil
}
