// Package history rebuilds a model conversation from persisted chat turns.
package history

import (
	"github.com/rvemuri2/helix-backend/pkg/llm"
)

// Turn is one persisted chat message in sender form.
type Turn struct {
	Sender  string
	Message string
}

// SenderAI is the sender label persisted for assistant turns. Any other
// sender is treated as the user.
const SenderAI = "ai"

// BuildContext maps persisted turns onto the model's role vocabulary with
// the system prompt at the head.
func BuildContext(systemPrompt string, turns []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})

	for _, turn := range turns {
		role := "user"
		if turn.Sender == SenderAI {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Message})
	}
	return messages
}
