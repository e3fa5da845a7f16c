package generator

import (
	"errors"
	"fmt"

	"storybot_eli5/config"
)

// Error codes, stable across releases so callers and the HTTP layer can match on them.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAgent      = "AGENT_ERROR"
	CodeProvider   = "LLM_ERROR"
	CodePipeline   = "PIPELINE_ERROR"
	CodeAPIKey     = "API_KEY_ERROR"
)

// ErrMissingAPIKey aliases the configuration sentinel so callers need only this package.
var ErrMissingAPIKey = config.ErrMissingAPIKey

// ValidationError rejects user input before any model call happens.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }
func (e *ValidationError) Code() string  { return CodeValidation }

// AgentError is a failure inside one pipeline stage.
type AgentError struct {
	Stage   State
	Agent   string
	Message string
	Err     error
}

func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Agent, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Agent, e.Message)
}
func (e *AgentError) Unwrap() error { return e.Err }
func (e *AgentError) Code() string  { return CodeAgent }

// ProviderReason classifies backend failures.
type ProviderReason string

const (
	ReasonNetwork   ProviderReason = "network"
	ReasonAuth      ProviderReason = "auth"
	ReasonRateLimit ProviderReason = "rate_limit"
	ReasonAPI       ProviderReason = "api"
	ReasonEmpty     ProviderReason = "empty"
	ReasonBlocked   ProviderReason = "blocked"
)

// ProviderError is returned by LLMClient implementations.
type ProviderError struct {
	Reason     ProviderReason
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := "llm " + string(e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}
func (e *ProviderError) Unwrap() error { return e.Err }
func (e *ProviderError) Code() string  { return CodeProvider }

// PipelineError aborts a CreateStory run. Stage is where it failed,
// LastCompleted the last stage that produced output (Idle if none).
type PipelineError struct {
	Stage         State
	LastCompleted State
	Topic         string
	Age           int
	Err           error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("failed to create story for topic %q for age %d at %s: %v", e.Topic, e.Age, e.Stage, e.Err)
}
func (e *PipelineError) Unwrap() error { return e.Err }
func (e *PipelineError) Code() string  { return CodePipeline }

// ErrorCode returns the code of the outermost coded error in err's chain.
func ErrorCode(err error) string {
	if errors.Is(err, ErrMissingAPIKey) {
		return CodeAPIKey
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
