package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"storybot_eli5/config"
)

// Agent is one stage of the story pipeline. Run reads what it needs from
// the context and returns the stage's text; it does not modify pc.
type Agent interface {
	Name() string
	Stage() State
	Run(ctx context.Context, pc *PipelineContext) (string, error)
}

// base holds what every agent shares: the client and its display profile.
type base struct {
	llm     LLMClient
	profile config.AgentProfile
	stage   State
	logger  *slog.Logger
}

func (b *base) Name() string                 { return b.profile.Name }
func (b *base) Stage() State                 { return b.stage }
func (b *base) Profile() config.AgentProfile { return b.profile }

func (b *base) fail(msg string, err error) error {
	return &AgentError{Stage: b.stage, Agent: b.profile.Name, Message: msg, Err: err}
}

// require fails fast when an upstream input is missing.
func (b *base) require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return b.fail("missing input", errors.New(name+" is empty"))
	}
	return nil
}

func (b *base) complete(ctx context.Context, pc *PipelineContext, prompt Prompt) (string, error) {
	b.logger.Debug("agent prompt", "request_id", pc.RequestID, "agent", b.profile.Name, "system", prompt.System, "user", prompt.User)

	raw, err := b.llm.Complete(ctx, prompt)
	if err != nil {
		return "", b.fail("completion failed", err)
	}
	out, err := PostProcess(raw)
	if err != nil {
		return "", b.fail("malformed output", err)
	}

	b.logger.Debug("agent output", "request_id", pc.RequestID, "agent", b.profile.Name, "output", out)
	return out, nil
}

// Researcher gathers neutral background on the topic.
type Researcher struct{ base }

func (a *Researcher) Prompt(pc *PipelineContext) (Prompt, error) {
	if err := a.require("topic", pc.Topic); err != nil {
		return Prompt{}, err
	}
	return BuildResearchPrompt(pc.Topic), nil
}

func (a *Researcher) Run(ctx context.Context, pc *PipelineContext) (string, error) {
	p, err := a.Prompt(pc)
	if err != nil {
		return "", err
	}
	return a.complete(ctx, pc, p)
}

// Simplifier rewrites the research for the age bracket.
type Simplifier struct{ base }

func (a *Simplifier) Prompt(pc *PipelineContext) (Prompt, error) {
	if err := a.require("research", pc.Research); err != nil {
		return Prompt{}, err
	}
	return BuildSimplifyPrompt(pc.Topic, pc.Research, pc.PromptAgeConfig()), nil
}

func (a *Simplifier) Run(ctx context.Context, pc *PipelineContext) (string, error) {
	p, err := a.Prompt(pc)
	if err != nil {
		return "", err
	}
	return a.complete(ctx, pc, p)
}

// Storywriter turns the simplified explanation into a draft story.
type Storywriter struct{ base }

func (a *Storywriter) Prompt(pc *PipelineContext) (Prompt, error) {
	if err := a.require("simplified text", pc.Simplified); err != nil {
		return Prompt{}, err
	}
	return BuildStoryPrompt(pc.Topic, pc.Simplified, pc.PromptAgeConfig(), pc.SimplerLanguage), nil
}

func (a *Storywriter) Run(ctx context.Context, pc *PipelineContext) (string, error) {
	p, err := a.Prompt(pc)
	if err != nil {
		return "", err
	}
	return a.complete(ctx, pc, p)
}

// Educator reviews the draft and returns the final story.
type Educator struct{ base }

func (a *Educator) Prompt(pc *PipelineContext) (Prompt, error) {
	if err := a.require("story", pc.Story); err != nil {
		return Prompt{}, err
	}
	return BuildReviewPrompt(pc.Topic, pc.Story, pc.PromptAgeConfig(), pc.MaxStoryChars), nil
}

func (a *Educator) Run(ctx context.Context, pc *PipelineContext) (string, error) {
	p, err := a.Prompt(pc)
	if err != nil {
		return "", err
	}
	return a.complete(ctx, pc, p)
}

// newAgents builds the four agents in pipeline order.
func newAgents(llm LLMClient, cfg *config.Config, logger *slog.Logger) []Agent {
	mk := func(key string, stage State) base {
		p, ok := cfg.Agent(key)
		if !ok {
			p = config.AgentProfile{Key: key, Name: key}
		}
		return base{llm: llm, profile: p, stage: stage, logger: logger}
	}
	return []Agent{
		&Researcher{mk("researcher", StateResearching)},
		&Simplifier{mk("simplifier", StateSimplifying)},
		&Storywriter{mk("storywriter", StateStorywriting)},
		&Educator{mk("educator", StateReviewing)},
	}
}
