package config

import "strings"

// AgentProfile is the display metadata of one pipeline agent.
type AgentProfile struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

func defaultAgents() []AgentProfile {
	return []AgentProfile{
		{Key: "researcher", Name: "Researcher", Emoji: "🧑‍🔬", Description: "Researches and gathers information about topics"},
		{Key: "simplifier", Name: "Simplifier", Emoji: "📘", Description: "Simplifies complex information for the target age"},
		{Key: "storywriter", Name: "Storywriter", Emoji: "🧙", Description: "Creates engaging stories for the target age"},
		{Key: "educator", Name: "Educator", Emoji: "👶", Description: "Reviews and improves stories for the target age"},
	}
}

// Agent returns the profile registered under key.
func (c *Config) Agent(key string) (AgentProfile, bool) {
	for _, a := range c.agents {
		if a.Key == strings.ToLower(key) {
			return a, true
		}
	}
	return AgentProfile{}, false
}

// Agents returns all profiles in pipeline order.
func (c *Config) Agents() []AgentProfile {
	return append([]AgentProfile(nil), c.agents...)
}

// Clone returns a deep copy of c, so adjustments made to the copy never reach
// a StoryBot already built from the original.
func (c *Config) Clone() *Config {
	cp := *c
	cp.brackets = make([]AgeConfig, len(c.brackets))
	for i, b := range c.brackets {
		cp.brackets[i] = b.Clone()
	}
	cp.fallback = c.fallback.Clone()
	cp.agents = c.Agents()
	return &cp
}
