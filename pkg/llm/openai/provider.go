package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rvemuri2/helix-backend/pkg/llm"
)

type OpenAIProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure OpenAIProvider implements LLMProvider
var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &OpenAIProvider{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type openaiChatRequest struct {
	Model        string           `json:"model"`
	Messages     []openaiMessage  `json:"messages"`
	Temperature  *float64         `json:"temperature,omitempty"`
	MaxTokens    int              `json:"max_tokens,omitempty"`
	Functions    []openaiFunction `json:"functions,omitempty"`
	FunctionCall string           `json:"function_call,omitempty"`
}

type openaiMessage struct {
	Role         string              `json:"role"`
	Content      string              `json:"content"`
	FunctionCall *openaiFunctionCall `json:"function_call,omitempty"`
}

type openaiFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type openaiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

// --- Interface Implementation ---

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	completion, err := o.chat(ctx, history, nil, opts...)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (o *OpenAIProvider) ChatWithFunctions(ctx context.Context, history []llm.Message, functions []llm.FunctionDef, opts ...llm.Option) (*llm.Completion, error) {
	return o.chat(ctx, history, functions, opts...)
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (o *OpenAIProvider) chat(ctx context.Context, history []llm.Message, functions []llm.FunctionDef, opts ...llm.Option) (*llm.Completion, error) {
	// 1. Process Options
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	// 2. Map generic messages to OpenAI messages
	messages := make([]openaiMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = openaiMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	// 3. Prepare Payload
	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	temp := options.Temperature
	reqPayload := openaiChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: &temp,
	}
	if options.MaxTokens > 0 {
		reqPayload.MaxTokens = options.MaxTokens
	}

	if len(functions) > 0 {
		reqPayload.Functions = make([]openaiFunction, len(functions))
		for i, fn := range functions {
			reqPayload.Functions[i] = openaiFunction{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters,
			}
		}
		reqPayload.FunctionCall = "auto"
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// 4. Send Request
	url := o.BaseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// 5. Parse Response
	var openaiResp openaiChatResponse
	if err := json.Unmarshal(bodyBytes, &openaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(openaiResp.Choices) == 0 {
		return nil, fmt.Errorf("openai error: empty choices")
	}

	choice := openaiResp.Choices[0].Message
	completion := &llm.Completion{Content: choice.Content}
	if choice.FunctionCall != nil {
		completion.FunctionCall = &llm.FunctionCall{
			Name:      choice.FunctionCall.Name,
			Arguments: choice.FunctionCall.Arguments,
		}
	}
	return completion, nil
}
