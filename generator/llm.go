package generator

import (
	"context"
	"fmt"

	"storybot_eli5/config"
)

// geminiOpenAIBaseURL is Gemini's OpenAI-compatible endpoint.
const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// LLMClient abstracts the model backend. Complete issues exactly one
// request and fails with a *ProviderError.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is shared read-only by every agent.
type LLMSettings struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	APIKey      string
	BaseURL     string
}

// SettingsFromConfig extracts the model settings of cfg.
func SettingsFromConfig(cfg *config.Config) LLMSettings {
	return LLMSettings{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		APIKey:      cfg.APIKey(),
		BaseURL:     cfg.LLM.BaseURL,
	}
}

// NewLLMFromSettings picks the client implementation for the provider.
func NewLLMFromSettings(s LLMSettings) (LLMClient, error) {
	switch s.Provider {
	case "", "gemini":
		if s.BaseURL == "" {
			s.BaseURL = geminiOpenAIBaseURL
		}
		return NewOpenAILLM(s)
	case "openai":
		return NewOpenAILLM(s)
	case "deepseek":
		// DeepSeek speaks the OpenAI protocol but has no default endpoint here.
		if s.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLM(s)
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}
