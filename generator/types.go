package generator

import (
	"time"

	"storybot_eli5/config"
)

// State is a step of the story pipeline.
type State string

const (
	StateIdle         State = "Idle"
	StateValidating   State = "Validating"
	StateResearching  State = "Researching"
	StateSimplifying  State = "Simplifying"
	StateStorywriting State = "Storywriting"
	StateReviewing    State = "Reviewing"
	StateComplete     State = "Complete"
	StateFailed       State = "Failed"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// StoryRequest is the user input of one CreateStory call.
type StoryRequest struct {
	Topic           string `json:"topic"`
	Age             int    `json:"age"`
	SimplerLanguage bool   `json:"simpler_language"`
}

// PipelineContext is owned by a single CreateStory call and discarded afterwards.
type PipelineContext struct {
	RequestID       string
	Topic           string
	Age             int
	AgeConfig       config.AgeConfig
	SimplerLanguage bool
	MaxStoryChars   int

	Research   string
	Simplified string
	Story      string
	FinalStory string
}

// PromptAgeConfig is the bracket as prompts should see it, lowered to the
// simplest settings when simpler language mode is on.
func (pc *PipelineContext) PromptAgeConfig() config.AgeConfig {
	if pc.SimplerLanguage {
		return pc.AgeConfig.Simplified()
	}
	return pc.AgeConfig
}

// StageResult is the text one agent produced.
type StageResult struct {
	Stage    State         `json:"stage"`
	Agent    string        `json:"agent"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration"`
}

// Result is returned by a successful CreateStory call. It shares no memory
// with the StoryBot or with other results.
type Result struct {
	ID              string           `json:"id"`
	Topic           string           `json:"topic"`
	Age             int              `json:"age"`
	AgeGroup        string           `json:"age_group"`
	AgeConfig       config.AgeConfig `json:"age_config"`
	Research        string           `json:"research"`
	Simplified      string           `json:"simplified"`
	Story           string           `json:"story"`
	FinalStory      string           `json:"final_story"`
	Title           string           `json:"title,omitempty"`
	AgentsUsed      []string         `json:"agents_used"`
	SimplerLanguage bool             `json:"simpler_language"`
	Stages          []StageResult    `json:"stages"`
	CreatedAt       time.Time        `json:"created_at"`
}

// AgentInfo describes one pipeline stage for diagnostics and UI display.
type AgentInfo struct {
	Stage       State  `json:"stage"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}
