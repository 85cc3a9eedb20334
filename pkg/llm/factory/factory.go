package factory

import (
	"fmt"

	"github.com/rvemuri2/helix-backend/pkg/llm"
	"github.com/rvemuri2/helix-backend/pkg/llm/ollama"
	"github.com/rvemuri2/helix-backend/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(baseURL, apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
