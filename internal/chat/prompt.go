package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/journallm/journallm/internal/model"
)

const (
	contextStart = "=== Journal Context Start ==="
	contextEnd   = "=== Journal Context End ==="
)

// SystemPrompt is the instruction sent with every chat request. It names the
// literal window the context covers.
func SystemPrompt(start, end time.Time) string {
	return fmt.Sprintf(`You are a personal journaling assistant.
You have access to structured journal summaries covering %s to %s.
Use the provided context verbatim; do not fabricate details outside it.
If the context does not mention something, say you are unsure.
Keep answers concise, reflective, and actionable.`, start.Format(model.DateLayout), end.Format(model.DateLayout))
}

// Body lays out the user-facing content: delimited context, numbered history
// (oldest first), then the question.
func Body(contextText string, history []model.ConversationTurn, message string) string {
	parts := []string{contextStart, contextText, contextEnd, ""}
	if len(history) > 0 {
		parts = append(parts, EncodeHistory(history)...)
		parts = append(parts, "")
	}
	parts = append(parts, "User question: "+message)
	return strings.Join(parts, "\n")
}

// EncodeHistory renders turns 1-indexed in their original order.
func EncodeHistory(history []model.ConversationTurn) []string {
	lines := make([]string, 0, 1+2*len(history))
	lines = append(lines, "Conversation history:")
	for i, turn := range history {
		n := i + 1
		lines = append(lines,
			fmt.Sprintf("%d. User: %s", n, turn.User),
			fmt.Sprintf("%d. Assistant: %s", n, turn.Assistant))
	}
	return lines
}
