package types

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"

	MaxChatMessages      = 30
	MaxChatMessageLength = 4000
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Trip     *TripContext  `json:"trip,omitempty"`
}

// ChatResponse is the assistant reply plus the packing list it proposes.
type ChatResponse struct {
	Reply string        `json:"reply"`
	Items []PackingItem `json:"items"`
	Trip  *TripContext  `json:"trip,omitempty"`
	Model string        `json:"model"`
}
