package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/rvemuri2/helix-backend/pkg/llm"

	"go.uber.org/zap"
)

type scriptedProvider struct {
	answer string
	err    error
	calls  int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.calls++
	return p.answer, p.err
}

func (p *scriptedProvider) ChatWithFunctions(ctx context.Context, history []llm.Message, fns []llm.FunctionDef, opts ...llm.Option) (*llm.Completion, error) {
	p.calls++
	return &llm.Completion{Content: p.answer}, p.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, nil, opts...)
}

type mapCache map[string]string

func (c mapCache) Get(utterance string) (string, bool) {
	v, ok := c[utterance]
	return v, ok
}

func (c mapCache) Save(utterance string, intent string) {
	c[utterance] = intent
}

func TestLLMClassifier(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
		want   Intent
	}{
		{name: "add_step verdict", answer: "add_step", want: AddStep},
		{name: "edit_step verdict", answer: "edit_step", want: EditStep},
		{name: "new_sequence verdict", answer: "new_sequence", want: NewSequence},
		{name: "verdict with whitespace and case", answer: "  Edit_Step\n", want: EditStep},
		{name: "garbage falls back", answer: "I think you want to edit step 3", want: NewSequence},
		{name: "provider failure falls back", answer: "", err: errors.New("model offline"), want: NewSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{answer: tt.answer, err: tt.err}
			classifier := NewLLMClassifier(provider, nil, zap.NewNop())

			got, err := classifier.Classify(context.Background(), "whatever")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLLMClassifierCache(t *testing.T) {
	provider := &scriptedProvider{answer: "add_step"}
	cache := mapCache{}
	classifier := NewLLMClassifier(provider, cache, zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := classifier.Classify(context.Background(), "add a follow-up step")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != AddStep {
			t.Fatalf("Classify() = %q, want %q", got, AddStep)
		}
	}

	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (cache should absorb repeats)", provider.calls)
	}
}

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      Intent
	}{
		{name: "add cue", utterance: "please add a step about pricing", want: AddStep},
		{name: "edit cue", utterance: "shorten step 2", want: EditStep},
		{name: "default", utterance: "write an outreach sequence for dentists", want: NewSequence},
	}

	classifier := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classifier.Classify(context.Background(), tt.utterance)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.utterance, got, tt.want)
			}
		})
	}
}
