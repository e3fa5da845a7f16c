package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"storybot_eli5/config"
)

// StoryBot runs the research -> simplify -> storywrite -> review pipeline.
// It holds no per-request state, so one instance may serve concurrent calls.
type StoryBot struct {
	cfg      *config.Config
	agents   []Agent
	logger   *slog.Logger
	progress func(requestID string, s State)
}

// Option configures a StoryBot.
type Option func(*StoryBot)

// WithLogger sets the logger used by the bot and its agents.
func WithLogger(l *slog.Logger) Option {
	return func(b *StoryBot) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithProgress registers a callback invoked on every state transition. It is
// called synchronously from the goroutine running CreateStory.
func WithProgress(fn func(requestID string, s State)) Option {
	return func(b *StoryBot) { b.progress = fn }
}

// New wires the four agents around llm. cfg is copied; later changes to it
// do not affect the bot.
func New(cfg *config.Config, llm LLMClient, opts ...Option) (*StoryBot, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	b := &StoryBot{cfg: cfg.Clone(), logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.agents = newAgents(llm, b.cfg, b.logger)
	return b, nil
}

// NewStoryBotFromConfig checks the credential, builds the configured LLM
// client and returns a ready StoryBot.
func NewStoryBotFromConfig(cfg *config.Config, opts ...Option) (*StoryBot, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	llm, err := NewLLMFromSettings(SettingsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return New(cfg, llm, opts...)
}

// Config returns the bot's configuration. Callers must not modify it.
func (b *StoryBot) Config() *config.Config { return b.cfg }

// NewRequest returns a request for topic using the configured default age.
func (b *StoryBot) NewRequest(topic string) StoryRequest {
	return StoryRequest{Topic: topic, Age: b.cfg.DefaultAge}
}

// ValidateTopic returns a *ValidationError when topic is unacceptable.
func (b *StoryBot) ValidateTopic(topic string) error {
	if err := b.cfg.ValidateTopic(topic); err != nil {
		return &ValidationError{Field: "topic", Message: err.Error(), Err: err}
	}
	return nil
}

func (b *StoryBot) validate(req StoryRequest) error {
	if err := b.ValidateTopic(req.Topic); err != nil {
		return err
	}
	if err := b.cfg.ValidateAge(req.Age); err != nil {
		return &ValidationError{Field: "age", Message: err.Error(), Err: err}
	}
	return nil
}

// CreateStory runs every stage in order. Input problems are reported as a
// *ValidationError before any agent runs; any later failure is a
// *PipelineError and no partial result is returned.
func (b *StoryBot) CreateStory(ctx context.Context, req StoryRequest) (*Result, error) {
	id := uuid.NewString()
	log := b.logger.With("request_id", id)

	b.transition(id, StateValidating)
	if err := b.validate(req); err != nil {
		b.transition(id, StateFailed)
		log.Warn("story request rejected", "error", err)
		return nil, err
	}

	pc := &PipelineContext{
		RequestID:       id,
		Topic:           strings.TrimSpace(req.Topic),
		Age:             req.Age,
		AgeConfig:       b.cfg.LookupAgeConfig(req.Age),
		SimplerLanguage: req.SimplerLanguage,
		MaxStoryChars:   b.cfg.MaxStoryChars,
	}
	log.Info("starting story creation",
		"topic", pc.Topic,
		"age", pc.Age,
		"age_group", pc.AgeConfig.Name,
		"simpler_language", pc.SimplerLanguage,
	)

	last := StateValidating
	stages := make([]StageResult, 0, len(b.agents))
	for _, a := range b.agents {
		stage := a.Stage()
		b.transition(id, stage)

		start := time.Now()
		out, err := a.Run(ctx, pc)
		if err != nil {
			b.transition(id, StateFailed)
			log.Error("pipeline stage failed", "stage", stage, "agent", a.Name(), "error", err)
			return nil, &PipelineError{Stage: stage, LastCompleted: last, Topic: pc.Topic, Age: pc.Age, Err: err}
		}
		elapsed := time.Since(start)
		pc.record(stage, out)
		stages = append(stages, StageResult{Stage: stage, Agent: a.Name(), Text: out, Duration: elapsed})
		last = stage
		log.Info("stage complete", "stage", stage, "agent", a.Name(), "chars", len(out), "duration", elapsed)
	}

	b.transition(id, StateComplete)
	log.Info("story creation completed", "final_story_chars", len(pc.FinalStory))

	return &Result{
		ID:              id,
		Topic:           pc.Topic,
		Age:             pc.Age,
		AgeGroup:        pc.AgeConfig.Key,
		AgeConfig:       pc.AgeConfig.Clone(),
		Research:        pc.Research,
		Simplified:      pc.Simplified,
		Story:           pc.Story,
		FinalStory:      pc.FinalStory,
		Title:           ExtractTitle(pc.FinalStory),
		AgentsUsed:      b.agentNames(),
		SimplerLanguage: pc.SimplerLanguage,
		Stages:          stages,
		CreatedAt:       time.Now(),
	}, nil
}

func (pc *PipelineContext) record(stage State, out string) {
	switch stage {
	case StateResearching:
		pc.Research = out
	case StateSimplifying:
		pc.Simplified = out
	case StateStorywriting:
		pc.Story = out
	case StateReviewing:
		pc.FinalStory = out
	}
}

func (b *StoryBot) transition(id string, s State) {
	if b.progress != nil {
		b.progress(id, s)
	}
}

func (b *StoryBot) agentNames() []string {
	names := make([]string, len(b.agents))
	for i, a := range b.agents {
		names[i] = a.Name()
	}
	return names
}

// AgentInfo lists the agents in pipeline order. It makes no model calls.
func (b *StoryBot) AgentInfo() []AgentInfo {
	out := make([]AgentInfo, 0, len(b.agents))
	for _, a := range b.agents {
		info := AgentInfo{Stage: a.Stage(), Name: a.Name()}
		if p, ok := a.(interface{ Profile() config.AgentProfile }); ok {
			info.Emoji = p.Profile().Emoji
			info.Description = p.Profile().Description
		}
		out = append(out, info)
	}
	return out
}

// AgentByName finds an agent by case-insensitive name.
func (b *StoryBot) AgentByName(name string) (Agent, bool) {
	for _, a := range b.agents {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return nil, false
}
