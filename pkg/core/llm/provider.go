// Package llm abstracts the chat-completion providers the AI analyst can
// run against. Providers are stateless; credentials come from the
// environment at call time.
package llm

import (
	"context"
	"fmt"
)

// Provider is the interface every model backend implements.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// NewProvider resolves an engine name from config to a concrete backend.
func NewProvider(engine string) (Provider, error) {
	switch engine {
	case "gemini", "":
		return &GeminiProvider{}, nil
	case "deepseek":
		return &DeepSeekProvider{}, nil
	case "qwen":
		return &QwenProvider{}, nil
	default:
		return nil, fmt.Errorf("UNKNOWN_LLM_ENGINE: %q (want gemini, deepseek or qwen)", engine)
	}
}
