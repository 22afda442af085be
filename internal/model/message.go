package model

import (
	"fmt"
	"time"
)

// Role identifies who sent a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two accepted values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single entry in a conversation transcript.
// Timestamp is an RFC 3339 string set at construction.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewMessage creates a message, rejecting any role outside the user/assistant enum.
func NewMessage(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("invalid message role: %q", role)
	}
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	msg, _ := NewMessage(RoleUser, content)
	return msg
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	msg, _ := NewMessage(RoleAssistant, content)
	return msg
}
