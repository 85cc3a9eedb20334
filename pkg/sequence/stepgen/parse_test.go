package stepgen

import (
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no fence",
			in:   `{"step_title": "Hello"}`,
			want: `{"step_title": "Hello"}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"step_title\": \"Hello\"}\n```",
			want: `{"step_title": "Hello"}`,
		},
		{
			name: "bare fence",
			in:   "```\n{\"step_title\": \"Hello\"}\n```",
			want: `{"step_title": "Hello"}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n```json\n{\"a\": 1}\n```\n ",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantStructured bool
		wantTitle      string
		wantContent    string
	}{
		{
			name:           "valid json",
			raw:            `{"step_title": "Follow Up", "step_content": "Hey {{First_Name}}, just checking in."}`,
			wantStructured: true,
			wantTitle:      "Follow Up",
			wantContent:    "Hey {{First_Name}}, just checking in.",
		},
		{
			name:           "fenced json",
			raw:            "```json\n{\"step_title\": \"Close\", \"step_content\": \"Thanks for your time.\"}\n```",
			wantStructured: true,
			wantTitle:      "Close",
			wantContent:    "Thanks for your time.",
		},
		{
			name:           "freeform falls back to raw",
			raw:            "Here is a friendly follow-up you could send.",
			wantStructured: false,
			wantTitle:      "Here is a friendly follow-up you could send.",
			wantContent:    "Here is a friendly follow-up you could send.",
		},
		{
			name:           "empty json object falls back",
			raw:            `{}`,
			wantStructured: false,
			wantTitle:      `{}`,
			wantContent:    `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStep(tt.raw)

			if got.Structured != tt.wantStructured {
				t.Errorf("Structured = %v, want %v", got.Structured, tt.wantStructured)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
		})
	}
}
