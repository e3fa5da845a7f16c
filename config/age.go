package config

// AgeConfig describes how prompts are tuned for one age bracket.
type AgeConfig struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Emoji      string   `json:"emoji"`
	MinAge     int      `json:"min_age"`
	MaxAge     int      `json:"max_age"` // -1 means open ended
	Complexity string   `json:"complexity"`
	Vocabulary string   `json:"vocabulary"`
	Concepts   string   `json:"concepts"`
	Tone       string   `json:"tone"`
	Metaphors  []string `json:"metaphors"`
}

// Contains reports whether age falls inside the bracket.
func (a AgeConfig) Contains(age int) bool {
	if age < a.MinAge {
		return false
	}
	return a.MaxAge < 0 || age <= a.MaxAge
}

// Clone returns a copy that shares no memory with a.
func (a AgeConfig) Clone() AgeConfig {
	a.Metaphors = append([]string(nil), a.Metaphors...)
	return a
}

// Simplified returns the lowest complexity settings used in simpler
// language mode. It applies to every bracket, the youngest included.
func (a AgeConfig) Simplified() AgeConfig {
	s := a.Clone()
	s.Name = a.Name + " (Simpler Language Mode)"
	s.Complexity = "very_simple"
	s.Vocabulary = "basic"
	s.Concepts = "fundamental"
	return s
}

func defaultBrackets() []AgeConfig {
	return []AgeConfig{
		{
			Key:        "early_childhood",
			Name:       "Young Children",
			Emoji:      "🧸",
			MinAge:     0,
			MaxAge:     7,
			Complexity: "very_simple",
			Vocabulary: "basic",
			Concepts:   "concrete",
			Tone:       "playful, warm and reassuring",
			Metaphors:  []string{"toys", "animals", "family", "playground", "food"},
		},
		{
			Key:        "middle_childhood",
			Name:       "Kids",
			Emoji:      "🎒",
			MinAge:     8,
			MaxAge:     12,
			Complexity: "simple",
			Vocabulary: "elementary",
			Concepts:   "concrete_with_some_abstract",
			Tone:       "curious and adventurous",
			Metaphors:  []string{"school", "sports", "games", "nature", "superheroes"},
		},
		{
			Key:        "teen",
			Name:       "Teenagers",
			Emoji:      "🎧",
			MinAge:     13,
			MaxAge:     17,
			Complexity: "moderate",
			Vocabulary: "intermediate",
			Concepts:   "abstract",
			Tone:       "engaging and relatable, never condescending",
			Metaphors:  []string{"social media", "music", "video games", "friendships", "sports"},
		},
		{
			Key:        "young_adult",
			Name:       "Young Adults",
			Emoji:      "🎓",
			MinAge:     18,
			MaxAge:     25,
			Complexity: "moderate_to_advanced",
			Vocabulary: "advanced",
			Concepts:   "abstract_and_applied",
			Tone:       "conversational and insightful",
			Metaphors:  []string{"university life", "first jobs", "travel", "technology"},
		},
	}
}

func adultBracket() AgeConfig {
	return AgeConfig{
		Key:        "adult",
		Name:       "Adults",
		Emoji:      "🧑",
		MinAge:     26,
		MaxAge:     -1,
		Complexity: "advanced",
		Vocabulary: "sophisticated",
		Concepts:   "nuanced",
		Tone:       "clear, respectful and thoughtful",
		Metaphors:  []string{"work", "household", "cooking", "finance", "everyday life"},
	}
}

// AgeBrackets returns the ordered bracket table followed by the fallback bracket.
func (c *Config) AgeBrackets() []AgeConfig {
	out := make([]AgeConfig, 0, len(c.brackets)+1)
	for _, b := range c.brackets {
		out = append(out, b.Clone())
	}
	return append(out, c.fallback.Clone())
}

// LookupAgeConfig returns the first bracket containing age, or the adult
// fallback when age is beyond every range. It never fails.
func (c *Config) LookupAgeConfig(age int) AgeConfig {
	for _, b := range c.brackets {
		if b.Contains(age) {
			return b.Clone()
		}
	}
	return c.fallback.Clone()
}

// AgeGroup returns the bracket key for age.
func (c *Config) AgeGroup(age int) string {
	return c.LookupAgeConfig(age).Key
}
