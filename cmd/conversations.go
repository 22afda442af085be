package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aichat/aichat/internal/model"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List saved conversations",
	RunE:    runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	convs, err := eng.List(ctx)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}

	current := eng.Conversation().ID
	for _, conv := range convs {
		marker := "  "
		if conv.ID == current {
			marker = "* "
		}
		fmt.Printf("%s%s  %-40s %d messages\n", marker, conv.ID, conv.Title, len(conv.Messages))
	}
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	_, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	conv, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	// The store hands back a fresh conversation for an unknown id
	if conv.ID != args[0] {
		return fmt.Errorf("conversation %s not found", args[0])
	}

	fmt.Printf("%s (%s)\n\n", conv.Title, conv.ID)
	for _, msg := range conv.Messages {
		label := "You"
		if msg.Role == model.RoleAssistant {
			label = "Assistant"
		}
		fmt.Printf("%s:\n%s\n\n", label, strings.TrimRight(msg.Content, "\n"))
	}
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := eng.DeleteConversation(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted conversation %s\n", args[0])
	return nil
}
