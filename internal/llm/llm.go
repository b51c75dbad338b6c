// Package llm abstracts the text-completion collaborator used for agent
// matching, mailbox lead extraction, and translation.
package llm

import "context"

// Message is a single conversational message.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// Client performs an opaque text completion over an ordered message list.
// Model, temperature, token limits, and timeouts are provider configuration;
// callers only see text in, text out.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// System and User are shorthands for building message lists.
func System(content string) Message { return Message{Role: "system", Content: content} }

// User builds a user-role message.
func User(content string) Message { return Message{Role: "user", Content: content} }
