package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"storybot_eli5/config"
)

func testAgents(llm LLMClient) []Agent {
	return newAgents(llm, config.Default(), slog.Default())
}

func TestAgents_RequireUpstreamInput(t *testing.T) {
	llm := &stubLLM{}
	agents := testAgents(llm)
	pc := &PipelineContext{Topic: "Stars", AgeConfig: config.Default().LookupAgeConfig(8)}

	// Everything after the researcher needs the previous stage's text.
	for _, a := range agents[1:] {
		_, err := a.Run(context.Background(), pc)
		var aErr *AgentError
		if !errors.As(err, &aErr) {
			t.Fatalf("%s: expected *AgentError, got %v", a.Name(), err)
		}
		if aErr.Stage != a.Stage() {
			t.Errorf("%s: error tagged with %s", a.Name(), aErr.Stage)
		}
	}
	if _, err := agents[0].Run(context.Background(), &PipelineContext{}); err == nil {
		t.Error("researcher should reject an empty topic")
	}
	if llm.count() != 0 {
		t.Errorf("no prompt should be sent for missing input, got %d calls", llm.count())
	}
}

func TestAgents_WrapProviderError(t *testing.T) {
	provErr := &ProviderError{Reason: ReasonAuth, StatusCode: 401}
	llm := &stubLLM{fn: func(int, Prompt) (string, error) { return "", provErr }}
	a := testAgents(llm)[0]

	_, err := a.Run(context.Background(), &PipelineContext{Topic: "Stars"})
	var aErr *AgentError
	if !errors.As(err, &aErr) || aErr.Agent != "Researcher" {
		t.Fatalf("expected Researcher agent error, got %v", err)
	}
	if !errors.Is(err, provErr) {
		t.Error("provider error not preserved in chain")
	}
}

func TestAgents_PromptIsPure(t *testing.T) {
	pc := &PipelineContext{
		Topic:         "Electricity",
		AgeConfig:     config.Default().LookupAgeConfig(14),
		Research:      "research text",
		Simplified:    "simple text",
		Story:         "story text",
		MaxStoryChars: 5000,
	}
	before := *pc
	ed := testAgents(&stubLLM{})[3].(*Educator)

	p1, err := ed.Prompt(pc)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := ed.Prompt(pc)
	if p1 != p2 {
		t.Error("prompt construction is not deterministic")
	}
	if pc.Topic != before.Topic || pc.Story != before.Story || pc.FinalStory != before.FinalStory {
		t.Error("prompt construction modified the context")
	}
	if !strings.Contains(p1.User, "under 5000 characters") {
		t.Error("review prompt missing the length limit")
	}
	if !strings.Contains(p1.User, "story text") || !strings.Contains(p1.User, "Teenagers") {
		t.Error("review prompt missing story or bracket")
	}
}

func TestBuildStoryPrompt_SimplerInstruction(t *testing.T) {
	age := config.Default().LookupAgeConfig(30)
	plain := BuildStoryPrompt("Taxes", "simple", age, false)
	simpler := BuildStoryPrompt("Taxes", "simple", age.Simplified(), true)

	if strings.Contains(plain.User, "simplest possible words") {
		t.Error("plain prompt should not ask for maximal simplicity")
	}
	if !strings.Contains(simpler.User, "simplest possible words") {
		t.Error("simpler prompt missing the instruction")
	}
	if !strings.Contains(plain.User, "Draw metaphors from: work") {
		t.Error("prompt missing metaphor domains")
	}
}
