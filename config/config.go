// Package config loads StoryBot settings from .env files, environment variables
// and an optional JSON file, and holds the static age bracket table.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no credential is configured for a real provider.
var ErrMissingAPIKey = errors.New("api key is required; set GEMINI_API_KEY or LLM_API_KEY")

// LLMConfig holds the model invocation settings shared by every agent.
type LLMConfig struct {
	Provider    string  `json:"provider,omitempty" env:"LLM_PROVIDER" envDefault:"gemini"`
	Model       string  `json:"model,omitempty" env:"LLM_MODEL" envDefault:"gemini-2.0-flash-001"`
	Temperature float64 `json:"temperature,omitempty" env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `json:"max_tokens,omitempty" env:"LLM_MAX_TOKENS" envDefault:"0"`
	APIKey      string  `json:"api_key,omitempty" env:"LLM_API_KEY"`
	BaseURL     string  `json:"base_url,omitempty" env:"LLM_BASE_URL"`
}

// Config is read once at startup and treated as read-only afterwards.
type Config struct {
	LLM LLMConfig `json:"llm"`

	// GeminiAPIKey is the fallback credential when LLM.APIKey is empty.
	GeminiAPIKey string `json:"-" env:"GEMINI_API_KEY"`

	MinTopicLength int `json:"min_topic_length,omitempty" env:"MIN_TOPIC_LENGTH" envDefault:"3"`
	MaxTopicLength int `json:"max_topic_length,omitempty" env:"MAX_TOPIC_LENGTH" envDefault:"200"`
	MinAge         int `json:"min_age,omitempty" env:"MIN_AGE" envDefault:"5"`
	MaxAge         int `json:"max_age,omitempty" env:"MAX_AGE" envDefault:"100"`
	DefaultAge     int `json:"default_age,omitempty" env:"DEFAULT_AGE" envDefault:"5"`
	MaxStoryChars  int `json:"max_story_chars,omitempty" env:"MAX_STORY_CHARS" envDefault:"5000"`

	ServerAddr     string        `json:"server_addr,omitempty" env:"SERVER_ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `json:"-" env:"REQUEST_TIMEOUT" envDefault:"3m"`
	LogLevel       string        `json:"log_level,omitempty" env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `json:"log_format,omitempty" env:"LOG_FORMAT" envDefault:"text"`

	brackets []AgeConfig
	fallback AgeConfig
	agents   []AgentProfile
}

// Default returns a Config populated with the built-in defaults only. It does
// not look at the environment.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash-001",
			Temperature: 0.7,
		},
		MinTopicLength: 3,
		MaxTopicLength: 200,
		MinAge:         5,
		MaxAge:         100,
		DefaultAge:     5,
		MaxStoryChars:  5000,
		ServerAddr:     ":8080",
		RequestTimeout: 3 * time.Minute,
		LogLevel:       "info",
		LogFormat:      "text",
		brackets:       defaultBrackets(),
		fallback:       adultBracket(),
		agents:         defaultAgents(),
	}
}

// Load reads .env files (missing files are ignored), then the process
// environment, then the optional JSON file at path. Values from the file win.
func Load(path string, envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks that the bounds and model settings are coherent.
func (c *Config) Validate() error {
	if c.MinTopicLength < 1 {
		return fmt.Errorf("min_topic_length must be at least 1, got %d", c.MinTopicLength)
	}
	if c.MinTopicLength > c.MaxTopicLength {
		return fmt.Errorf("min_topic_length %d exceeds max_topic_length %d", c.MinTopicLength, c.MaxTopicLength)
	}
	if c.MinAge < 0 || c.MinAge > c.MaxAge {
		return fmt.Errorf("invalid age bounds [%d, %d]", c.MinAge, c.MaxAge)
	}
	if c.DefaultAge < c.MinAge || c.DefaultAge > c.MaxAge {
		return fmt.Errorf("default_age %d outside [%d, %d]", c.DefaultAge, c.MinAge, c.MaxAge)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be within [0, 2], got %g", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm max_tokens must not be negative, got %d", c.LLM.MaxTokens)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm model is required")
	}
	return nil
}

// APIKey returns the effective credential.
func (c *Config) APIKey() string {
	if k := strings.TrimSpace(c.LLM.APIKey); k != "" {
		return k
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// RequireAPIKey fails with ErrMissingAPIKey unless a credential is set or the
// offline mock provider is selected.
func (c *Config) RequireAPIKey() error {
	if c.LLM.Provider == "mock" {
		return nil
	}
	if c.APIKey() == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ValidateTopic reports why topic is unacceptable, or nil.
func (c *Config) ValidateTopic(topic string) error {
	t := strings.TrimSpace(topic)
	if t == "" {
		return errors.New("topic cannot be empty")
	}
	n := utf8.RuneCountInString(t)
	if n < c.MinTopicLength || n > c.MaxTopicLength {
		return fmt.Errorf("topic must be between %d and %d characters", c.MinTopicLength, c.MaxTopicLength)
	}
	return nil
}

// ValidateAge reports why age is out of the accepted range, or nil.
func (c *Config) ValidateAge(age int) error {
	if age < c.MinAge || age > c.MaxAge {
		return fmt.Errorf("age must be between %d and %d", c.MinAge, c.MaxAge)
	}
	return nil
}
