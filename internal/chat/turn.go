// Package chat defines the conversation data model shared by the HTTP API
// and the assistant pipeline. A conversation is the full turn history supplied
// by the caller on every request; nothing is persisted server-side.
package chat

import "strings"

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation, tagged by speaker role.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of turns. The last element is the new
// user message being answered.
type Conversation []Turn

// LatestMessage returns the trimmed content of the final turn, or "" for an
// empty conversation.
func (c Conversation) LatestMessage() string {
	if len(c) == 0 {
		return ""
	}
	return strings.TrimSpace(c[len(c)-1].Content)
}

// History returns all turns except the one being answered.
func (c Conversation) History() []Turn {
	if len(c) <= 1 {
		return nil
	}
	return c[:len(c)-1]
}

// FormatHistory renders turns as "Role: content" lines joined by newlines,
// the shape the prompt composer embeds in the conversational history block.
func FormatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, capitalizeRole(t.Role)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func capitalizeRole(r Role) string {
	s := string(r)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
