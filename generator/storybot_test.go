package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"storybot_eli5/config"
)

// stubLLM records every prompt and answers through fn (call index starts at 1).
type stubLLM struct {
	mu    sync.Mutex
	calls []Prompt
	fn    func(n int, p Prompt) (string, error)
}

func (s *stubLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	n := len(s.calls)
	s.mu.Unlock()
	if s.fn == nil {
		return fmt.Sprintf("canned output %d", n), nil
	}
	return s.fn(n, p)
}

func (s *stubLLM) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestBot(t *testing.T, llm LLMClient, opts ...Option) *StoryBot {
	t.Helper()
	bot, err := New(config.Default(), llm, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return bot
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(config.Default(), nil); err == nil {
		t.Fatal("expected error for nil llm client")
	}
	if _, err := New(nil, &stubLLM{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewStoryBotFromConfig_MissingKey(t *testing.T) {
	cfg := config.Default()
	_, err := NewStoryBotFromConfig(cfg)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if ErrorCode(err) != CodeAPIKey {
		t.Errorf("expected code %s, got %s", CodeAPIKey, ErrorCode(err))
	}
}

func TestNewStoryBotFromConfig_Mock(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mock"
	bot, err := NewStoryBotFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewStoryBotFromConfig: %v", err)
	}
	res, err := bot.CreateStory(context.Background(), bot.NewRequest("Rainbows"))
	if err != nil {
		t.Fatalf("CreateStory with mock: %v", err)
	}
	if res.Title != "A Mock Story" {
		t.Errorf("expected mock title, got %q", res.Title)
	}
}

func TestCreateStory_Success(t *testing.T) {
	llm := &stubLLM{}
	var states []State
	bot := newTestBot(t, llm, WithProgress(func(_ string, s State) { states = append(states, s) }))

	res, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Black holes", Age: 5})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}

	for name, v := range map[string]string{
		"research":    res.Research,
		"simplified":  res.Simplified,
		"story":       res.Story,
		"final_story": res.FinalStory,
	} {
		if v == "" {
			t.Errorf("%s is empty", name)
		}
	}
	if res.AgeConfig.Name != config.Default().LookupAgeConfig(5).Name {
		t.Errorf("unexpected age config %q", res.AgeConfig.Name)
	}
	if res.AgeGroup != "early_childhood" {
		t.Errorf("expected early_childhood, got %s", res.AgeGroup)
	}
	if llm.count() != 4 {
		t.Errorf("expected 4 model calls, got %d", llm.count())
	}
	if res.ID == "" {
		t.Error("expected result id")
	}
	if len(res.Stages) != 4 {
		t.Fatalf("expected 4 stage results, got %d", len(res.Stages))
	}

	want := []State{StateValidating, StateResearching, StateSimplifying, StateStorywriting, StateReviewing, StateComplete}
	if fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("unexpected transitions %v, want %v", states, want)
	}
}

func TestCreateStory_PassesOutputsForward(t *testing.T) {
	llm := &stubLLM{}
	bot := newTestBot(t, llm)

	if _, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Gravity", Age: 10}); err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	// Each prompt after the first contains the previous stage's output.
	for i := 1; i < 4; i++ {
		prev := fmt.Sprintf("canned output %d", i)
		if !strings.Contains(llm.calls[i].User, prev) {
			t.Errorf("call %d prompt does not contain %q", i+1, prev)
		}
	}
	if !strings.Contains(llm.calls[0].User, "Gravity") {
		t.Error("research prompt does not mention the topic")
	}
}

func TestCreateStory_ValidationNoCalls(t *testing.T) {
	llm := &stubLLM{}
	var states []State
	bot := newTestBot(t, llm, WithProgress(func(_ string, s State) { states = append(states, s) }))

	tests := []struct {
		name  string
		req   StoryRequest
		field string
	}{
		{"empty topic", StoryRequest{Topic: "", Age: 5}, "topic"},
		{"short topic", StoryRequest{Topic: "ab", Age: 5}, "topic"},
		{"long topic", StoryRequest{Topic: strings.Repeat("x", 201), Age: 5}, "topic"},
		{"age too low", StoryRequest{Topic: "Volcanoes", Age: 2}, "age"},
		{"age too high", StoryRequest{Topic: "Volcanoes", Age: 101}, "age"},
		{"negative age", StoryRequest{Topic: "Volcanoes", Age: -3}, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states = nil
			res, err := bot.CreateStory(context.Background(), tt.req)
			if res != nil {
				t.Error("expected nil result")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T %v", err, err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, vErr.Field)
			}
			if states[len(states)-1] != StateFailed {
				t.Errorf("expected Failed state, got %v", states)
			}
		})
	}
	if llm.count() != 0 {
		t.Errorf("expected no model calls, got %d", llm.count())
	}
}

func TestCreateStory_TopicBoundsInclusive(t *testing.T) {
	llm := &stubLLM{}
	bot := newTestBot(t, llm)
	for _, topic := range []string{"abc", strings.Repeat("y", 200)} {
		if _, err := bot.CreateStory(context.Background(), StoryRequest{Topic: topic, Age: 5}); err != nil {
			t.Errorf("topic of length %d: unexpected error %v", len(topic), err)
		}
	}
}

func TestCreateStory_ProviderFailureOnSimplifier(t *testing.T) {
	provErr := &ProviderError{Reason: ReasonRateLimit, StatusCode: 429}
	llm := &stubLLM{fn: func(n int, _ Prompt) (string, error) {
		if n == 2 {
			return "", provErr
		}
		return "ok text", nil
	}}
	bot := newTestBot(t, llm)

	res, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Black holes", Age: 5})
	if res != nil {
		t.Fatal("expected no partial result")
	}
	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *PipelineError, got %T %v", err, err)
	}
	if pErr.LastCompleted != StateResearching {
		t.Errorf("expected last completed Researching, got %s", pErr.LastCompleted)
	}
	if pErr.Stage != StateSimplifying {
		t.Errorf("expected failing stage Simplifying, got %s", pErr.Stage)
	}
	var got *ProviderError
	if !errors.As(err, &got) || got != provErr {
		t.Errorf("expected provider error in chain, got %v", err)
	}
	var aErr *AgentError
	if !errors.As(err, &aErr) || aErr.Agent != "Simplifier" {
		t.Errorf("expected Simplifier agent error, got %v", aErr)
	}
	if llm.count() != 2 {
		t.Errorf("expected exactly 2 model calls, got %d", llm.count())
	}
	if ErrorCode(err) != CodePipeline {
		t.Errorf("expected pipeline code, got %s", ErrorCode(err))
	}
}

func TestCreateStory_EmptyOutputFails(t *testing.T) {
	llm := &stubLLM{fn: func(n int, _ Prompt) (string, error) {
		if n == 3 {
			return "   \n ", nil
		}
		return "fine", nil
	}}
	bot := newTestBot(t, llm)

	_, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Tides", Age: 9})
	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *PipelineError, got %v", err)
	}
	if pErr.Stage != StateStorywriting || pErr.LastCompleted != StateSimplifying {
		t.Errorf("unexpected stages: failed %s, last %s", pErr.Stage, pErr.LastCompleted)
	}
	if llm.count() != 3 {
		t.Errorf("educator must not run, got %d calls", llm.count())
	}
}

func TestCreateStory_IndependentResults(t *testing.T) {
	bot := newTestBot(t, &stubLLM{})

	a, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Volcanoes", Age: 6})
	if err != nil {
		t.Fatal(err)
	}
	b, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Photosynthesis", Age: 6})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("results share an id")
	}

	a.AgeConfig.Metaphors[0] = "mutated"
	a.AgentsUsed[0] = "mutated"
	a.Stages[0].Text = "mutated"

	if b.AgeConfig.Metaphors[0] == "mutated" || b.AgentsUsed[0] == "mutated" || b.Stages[0].Text == "mutated" {
		t.Error("mutating one result changed the other")
	}
	if bot.Config().LookupAgeConfig(6).Metaphors[0] == "mutated" {
		t.Error("mutating a result changed the bracket table")
	}
	if b.Topic != "Photosynthesis" {
		t.Errorf("unexpected topic %q", b.Topic)
	}
}

func TestCreateStory_Concurrent(t *testing.T) {
	bot := newTestBot(t, &stubLLM{})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := bot.CreateStory(context.Background(), StoryRequest{Topic: fmt.Sprintf("Topic %d", i), Age: 12})
			if err != nil {
				errs <- err
				return
			}
			if res.Topic != fmt.Sprintf("Topic %d", i) {
				errs <- fmt.Errorf("result topic %q leaked from another request", res.Topic)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// Simpler language is an independent modifier: even the youngest bracket
// gets the lowered settings and the extra instruction.
func TestCreateStory_SimplerLanguageYoungest(t *testing.T) {
	llm := &stubLLM{}
	bot := newTestBot(t, llm)

	res, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Magnets", Age: 5, SimplerLanguage: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.SimplerLanguage {
		t.Error("flag not recorded in result")
	}
	if strings.Contains(res.AgeConfig.Name, "Simpler Language Mode") {
		t.Error("result age config should be the resolved bracket, not the prompt variant")
	}
	for i := 1; i < 4; i++ {
		if !strings.Contains(llm.calls[i].User, "(Simpler Language Mode)") {
			t.Errorf("call %d missing simpler language settings", i+1)
		}
		if !strings.Contains(llm.calls[i].User, "Vocabulary Level: basic") {
			t.Errorf("call %d missing basic vocabulary", i+1)
		}
	}
	if strings.Contains(llm.calls[0].User, "Simpler Language Mode") {
		t.Error("research prompt should not depend on the flag")
	}
}

func TestCreateStory_ReusableAfterFailure(t *testing.T) {
	fail := true
	llm := &stubLLM{fn: func(n int, _ Prompt) (string, error) {
		if fail {
			return "", &ProviderError{Reason: ReasonNetwork}
		}
		return "text", nil
	}}
	bot := newTestBot(t, llm)

	if _, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Clouds", Age: 7}); err == nil {
		t.Fatal("expected failure")
	}
	fail = false
	if _, err := bot.CreateStory(context.Background(), StoryRequest{Topic: "Clouds", Age: 7}); err != nil {
		t.Fatalf("second call should succeed: %v", err)
	}
}

func TestAgentInfo_Order(t *testing.T) {
	bot := newTestBot(t, &stubLLM{})
	info := bot.AgentInfo()

	want := []string{"Researcher", "Simplifier", "Storywriter", "Educator"}
	if len(info) != len(want) {
		t.Fatalf("expected %d agents, got %d", len(want), len(info))
	}
	for i, name := range want {
		if info[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, info[i].Name)
		}
		if info[i].Description == "" {
			t.Errorf("%s has no description", name)
		}
	}
	if info[0].Stage != StateResearching || info[3].Stage != StateReviewing {
		t.Errorf("unexpected stages %s .. %s", info[0].Stage, info[3].Stage)
	}
}

func TestAgentByName(t *testing.T) {
	bot := newTestBot(t, &stubLLM{})
	for _, name := range []string{"Researcher", "simplifier", "STORYWRITER", "Educator"} {
		if _, ok := bot.AgentByName(name); !ok {
			t.Errorf("agent %s not found", name)
		}
	}
	if a, ok := bot.AgentByName("NonExistentAgent"); ok || a != nil {
		t.Error("expected no agent for unknown name")
	}
}

func TestNew_ConfigCopied(t *testing.T) {
	cfg := config.Default()
	bot := newTestBotWithConfig(t, cfg)
	cfg.MaxTopicLength = 5

	if err := bot.ValidateTopic("A fairly long topic"); err != nil {
		t.Errorf("bot should keep its own config copy: %v", err)
	}
}

func newTestBotWithConfig(t *testing.T, cfg *config.Config) *StoryBot {
	t.Helper()
	bot, err := New(cfg, &stubLLM{})
	if err != nil {
		t.Fatal(err)
	}
	return bot
}
