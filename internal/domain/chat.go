package domain

// ChatRole is the author of a chat message.
type ChatRole string

// Chat roles.
const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// IsValid checks if the role is one of the supported values.
func (r ChatRole) IsValid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// ChatCompletion is a validated request for a streamed completion.
type ChatCompletion struct {
	Model       string
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
}
