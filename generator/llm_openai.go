package generator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
type OpenAILLM struct {
	settings LLMSettings
	client   openai.Client
}

// NewOpenAILLM builds a client for any OpenAI-compatible endpoint. SDK retries
// are disabled so every Complete is a single request.
func NewOpenAILLM(s LLMSettings, extra ...option.RequestOption) (*OpenAILLM, error) {
	if s.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if s.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	opts = append(opts, extra...)
	return &OpenAILLM{settings: s, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.settings.Model),
		Messages:    msgs,
		Temperature: openai.Float(o.settings.Temperature),
	}
	if o.settings.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.settings.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Reason: ReasonEmpty, Message: "empty choices"}
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", &ProviderError{Reason: ReasonBlocked, Message: "response blocked by content filter"}
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", &ProviderError{Reason: ReasonEmpty, Message: "empty completion"}
	}
	return choice.Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		reason := ReasonAPI
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			reason = ReasonAuth
		case http.StatusTooManyRequests:
			reason = ReasonRateLimit
		}
		return &ProviderError{Reason: reason, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &ProviderError{Reason: ReasonNetwork, Err: err}
}
