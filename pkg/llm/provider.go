package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// FunctionDef describes a callable tool exposed to the model.
// Parameters is a JSON Schema object.
type FunctionDef struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// FunctionCall is the model's decision to invoke a declared function.
// Arguments is the raw JSON string as returned by the provider.
type FunctionCall struct {
	Name      string
	Arguments string
}

// Completion is the result of a function-enabled chat turn. Exactly one of
// Content or FunctionCall is meaningful: a populated FunctionCall means the
// model chose to call a tool instead of answering in text.
type Completion struct {
	Content      string
	FunctionCall *FunctionCall
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatWithFunctions sends a chat history along with declared functions.
	// The model may answer in plain text or request a function call.
	ChatWithFunctions(ctx context.Context, history []Message, functions []FunctionDef, options ...Option) (*Completion, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
