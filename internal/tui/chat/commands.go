package chat

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Command represents a slash command
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
}

// AllCommands returns all available slash commands
func AllCommands() []Command {
	return []Command{
		{
			Name:        "help",
			Aliases:     []string{"h", "?"},
			Description: "Show help and available commands",
			Usage:       "/help",
		},
		{
			Name:        "new",
			Aliases:     []string{"n"},
			Description: "Start a new conversation",
			Usage:       "/new",
		},
		{
			Name:        "conversations",
			Aliases:     []string{"ls", "history"},
			Description: "Browse saved conversations",
			Usage:       "/conversations",
		},
		{
			Name:        "settings",
			Aliases:     []string{"config"},
			Description: "Edit provider, API key and model",
			Usage:       "/settings",
		},
		{
			Name:        "clear",
			Aliases:     []string{"c"},
			Description: "Clear the current conversation",
			Usage:       "/clear",
		},
		{
			Name:        "delete",
			Aliases:     []string{"d"},
			Description: "Delete a conversation",
			Usage:       "/delete [id]",
		},
		{
			Name:        "quit",
			Aliases:     []string{"q", "exit"},
			Description: "Exit chat",
			Usage:       "/quit",
		},
	}
}

// CommandSource implements fuzzy.Source for command searching
type CommandSource []Command

func (c CommandSource) String(i int) string {
	return c[i].Name
}

func (c CommandSource) Len() int {
	return len(c)
}

// FilterCommands returns commands matching the query using fuzzy search
func FilterCommands(query string) []Command {
	commands := AllCommands()
	if query == "" {
		return commands
	}

	query = strings.TrimPrefix(query, "/")

	// Exact name/alias matches win outright
	queryLower := strings.ToLower(query)
	for _, cmd := range commands {
		if cmd.Name == queryLower {
			return []Command{cmd}
		}
		for _, alias := range cmd.Aliases {
			if alias == queryLower {
				return []Command{cmd}
			}
		}
	}

	source := CommandSource(commands)
	matches := fuzzy.FindFrom(query, source)

	var result []Command
	for _, match := range matches {
		result = append(result, commands[match.Index])
	}
	return result
}
