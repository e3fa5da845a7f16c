package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is an offline stand-in that never calls a model. It echoes the
// instruction it was given so the whole pipeline can run locally.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("# A Mock Story\n\n")
	sb.WriteString("Once upon a time a curious helper read these instructions:\n\n")
	lines := strings.Split(strings.TrimSpace(prompt.User), "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("> %s\n", strings.TrimSpace(l)))
	}
	sb.WriteString("\nAnd then it wrote a very small story about them.\n")
	return sb.String(), nil
}
