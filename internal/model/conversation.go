package model

import (
	"strings"
	"time"
	"unicode"
)

// DefaultTitle is the title of a conversation before any message names it.
const DefaultTitle = "New Chat"

const maxTitleLen = 40

// Conversation is an ordered transcript of messages. The message slice is
// append-only; its order is the canonical chat order and must survive
// persistence unchanged.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt string    `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// NewConversation creates an empty conversation with a fresh ID.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        NewID(),
		Title:     DefaultTitle,
		CreatedAt: time.Now().Format(time.RFC3339),
		Messages:  []Message{},
	}
}

// Append adds a message to the end of the transcript.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// DeriveTitle names an untitled conversation after its first user message.
// It is a no-op once the conversation has a real title.
func (c *Conversation) DeriveTitle() {
	if c.Title != DefaultTitle && c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role != RoleUser {
			continue
		}
		if title := titleFrom(msg.Content); title != "" {
			c.Title = title
		}
		return
	}
}

// titleFrom collapses content into a single short line.
func titleFrom(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return ""
	}
	runes := []rune(line)
	if len(runes) <= maxTitleLen {
		return line
	}
	// Break at a word boundary when one is close enough.
	cut := maxTitleLen
	for i := maxTitleLen; i > maxTitleLen/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
