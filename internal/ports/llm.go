package ports

import "context"

type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole
	Content string
}

type ChatOptions struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// LLM is the capability port onto the chat-completion model. Chat is
// stateless — the caller supplies the full message history every time.
type LLM interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}
