package history

import (
	"testing"
)

func TestBuildContext(t *testing.T) {
	turns := []Turn{
		{Sender: "ai", Message: "How can I help you?"},
		{Sender: "user", Message: "Write an outreach sequence"},
		{Sender: "bot", Message: "legacy sender treated as user"},
	}

	messages := BuildContext("system prompt here", turns)

	if len(messages) != 4 {
		t.Fatalf("len = %d, want 4", len(messages))
	}
	if messages[0].Role != "system" || messages[0].Content != "system prompt here" {
		t.Errorf("head = %+v, want system prompt", messages[0])
	}
	if messages[1].Role != "assistant" {
		t.Errorf("ai turn role = %q, want assistant", messages[1].Role)
	}
	if messages[2].Role != "user" {
		t.Errorf("user turn role = %q, want user", messages[2].Role)
	}
	if messages[3].Role != "user" {
		t.Errorf("unknown sender role = %q, want user", messages[3].Role)
	}
}

func TestBuildContextEmpty(t *testing.T) {
	messages := BuildContext("prompt", nil)
	if len(messages) != 1 {
		t.Fatalf("len = %d, want 1 (system prompt only)", len(messages))
	}
}
