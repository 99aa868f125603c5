package chat

import "github.com/journallm/journallm/internal/model"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one wire-level chat history item.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PairHistory scans messages two at a time from the start and keeps a pair
// only when a user message is immediately followed by an assistant message.
// Malformed pairs and an unpaired trailing message are dropped.
func PairHistory(msgs []Message) []model.ConversationTurn {
	var turns []model.ConversationTurn
	for i := 0; i+1 < len(msgs); i += 2 {
		if msgs[i].Role == RoleUser && msgs[i+1].Role == RoleAssistant {
			turns = append(turns, model.ConversationTurn{User: msgs[i].Content, Assistant: msgs[i+1].Content})
		}
	}
	return turns
}
