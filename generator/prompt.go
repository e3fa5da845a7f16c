package generator

import (
	"fmt"
	"strings"

	"storybot_eli5/config"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

const researcherPersona = `You are an Information Research Specialist with over 15 years of experience in academic and applied research.
You've developed a reputation for distilling large volumes of information into clear, actionable insights.
You've worked across scientific, technical, and policy domains, and are skilled at separating credible sources from noise.
You believe that clarity begins with rigorously sourced facts and that even complex ideas can be made understandable with the right foundation.`

const simplifierPersona = `You are a Language Simplifier and Analogy Creator with over a decade of experience working as a science communicator and education consultant.
You've helped leading research institutions translate dense material into accessible content for different age groups.
You specialize in using analogy, metaphor, and age-appropriate principles to craft explanations that resonate with your target audience.`

const storywriterPersona = `You are a Creative Storyteller with over 12 published storybooks and a background in developmental psychology.
You are known for creating narratives that both engage and educate across different age groups.
Your storytelling style is imaginative but always grounded in a clear learning goal.`

const educatorPersona = `You are an Educational Quality Reviewer with 20 years of experience in education across different age groups.
You specialize in aligning content with cognitive and emotional development stages, and you have a critical eye
for making sure materials are not just entertaining, but pedagogically sound.`

// BuildResearchPrompt asks for neutral factual background on the topic.
func BuildResearchPrompt(topic string) Prompt {
	var sb strings.Builder
	sb.WriteString("Your goal is to gather accurate and relevant information about a given topic from reliable sources.\n\n")
	sb.WriteString(fmt.Sprintf("Research the topic '%s' and summarize the key points in simple terms.\n", topic))
	sb.WriteString("Stay factual and neutral; do not invent sources.\n\n")
	sb.WriteString("Expected output: A short, accurate summary of the topic using non-technical language.")
	return Prompt{System: researcherPersona, User: sb.String()}
}

// BuildSimplifyPrompt asks to strip jargon from the research for the bracket.
func BuildSimplifyPrompt(topic, research string, age config.AgeConfig) Prompt {
	var sb strings.Builder
	sb.WriteString("Your goal is to convert complex topics into age-appropriate explanations using analogies and clear language.\n\n")
	writeAgeBlock(&sb, age)
	sb.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	sb.WriteString("Take the following research summary, remove all jargon, and simplify it using analogies and vocabulary appropriate for this age group:\n\n")
	sb.WriteString(research)
	sb.WriteString("\n\nExpected output: A simplified, analogy-rich explanation suitable for the specified age group.")
	return Prompt{System: simplifierPersona, User: sb.String()}
}

// BuildStoryPrompt asks for a short narrative built on the simplified text.
func BuildStoryPrompt(topic, simplified string, age config.AgeConfig, simpler bool) Prompt {
	var sb strings.Builder
	sb.WriteString("Your goal is to turn simplified concepts into engaging and imaginative stories suitable for the target age group.\n\n")
	writeAgeBlock(&sb, age)
	sb.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	if simpler {
		sb.WriteString("Use the simplest possible words and very short sentences. Avoid every technical term.\n\n")
	}
	sb.WriteString("Create a short, engaging story for this age group that incorporates the following simplified explanation in a fun and imaginative way:\n\n")
	sb.WriteString(simplified)
	sb.WriteString("\n\nExpected output: A story that teaches the concept through a narrative appropriate for the specified age group.")
	return Prompt{System: storywriterPersona, User: sb.String()}
}

// BuildReviewPrompt asks for a critique-and-revise pass returning only the story.
func BuildReviewPrompt(topic, story string, age config.AgeConfig, maxChars int) Prompt {
	var sb strings.Builder
	sb.WriteString("Your goal is to ensure the story is pedagogically sound, age-appropriate, and aligned with the target age group's comprehension levels.\n\n")
	writeAgeBlock(&sb, age)
	sb.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	sb.WriteString("Review the following story for clarity and engagement and provide ONLY the final polished story that is ready for this age group. ")
	sb.WriteString("Add a small paragraph at the end of the story that connects the topic to the story.\n\n")
	if maxChars > 0 {
		sb.WriteString(fmt.Sprintf("IMPORTANT: Keep the final story under %d characters to ensure it's concise and engaging.\n\n", maxChars))
	}
	sb.WriteString("Do not include any explanations, reviews, or commentary - just the story itself:\n\n")
	sb.WriteString(story)
	sb.WriteString("\n\nExpected output: ONLY the final polished story, nothing else.")
	return Prompt{System: educatorPersona, User: sb.String()}
}

func writeAgeBlock(sb *strings.Builder, age config.AgeConfig) {
	sb.WriteString(fmt.Sprintf("Age Group: %s\n", age.Name))
	sb.WriteString(fmt.Sprintf("Complexity Level: %s\n", age.Complexity))
	sb.WriteString(fmt.Sprintf("Vocabulary Level: %s\n", age.Vocabulary))
	sb.WriteString(fmt.Sprintf("Concept Depth: %s\n", age.Concepts))
	if age.Tone != "" {
		sb.WriteString(fmt.Sprintf("Tone: %s\n", age.Tone))
	}
	if len(age.Metaphors) > 0 {
		sb.WriteString(fmt.Sprintf("Draw metaphors from: %s\n", strings.Join(age.Metaphors, ", ")))
	}
	sb.WriteString("\n")
}
