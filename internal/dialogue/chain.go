// Package dialogue binds an LLM generation function to a prompt template with
// two named slots, {{chat_history}} and {{human_input}}, and owns the
// conversation-turn types shared by interview sessions and analysis.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/hirevox/hirevox/internal/prompts"
)

type Speaker string

const (
	SpeakerInterviewer Speaker = "Interviewer"
	SpeakerCandidate   Speaker = "Candidate"
	SpeakerUser        Speaker = "User"
)

// Turn is one contribution to the conversation. History is append-only and
// never reordered within a session.
type Turn struct {
	Speaker Speaker `json:"sender"`
	Text    string  `json:"text"`
}

// FormatHistory serializes turns as "Speaker: text" lines, the form the
// dialogue templates consume verbatim.
func FormatHistory(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Speaker, t.Text))
	}
	return strings.Join(lines, "\n")
}

const (
	historySlot = "{{chat_history}}"
	inputSlot   = "{{human_input}}"
)

// EscapeBraces neutralizes template-control characters in user-supplied text
// so resume/vacancy content cannot corrupt the template structure.
func EscapeBraces(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "{", "{ ")
	return strings.ReplaceAll(text, "}", "} ")
}

// GenerateFunc is one provider-backed generation call.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Chain is a template bound to a generation function.
type Chain struct {
	gen      GenerateFunc
	template string
}

func NewChain(gen GenerateFunc, template string) *Chain {
	return &Chain{gen: gen, template: template}
}

// Predict fills the template slots and runs one generation call.
func (c *Chain) Predict(ctx context.Context, humanInput, chatHistory string) (string, error) {
	prompt := strings.NewReplacer(
		historySlot, chatHistory,
		inputSlot, humanInput,
	).Replace(c.template)

	text, err := c.gen(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// InterviewerTemplate assembles the interviewer's turn-generation template from
// the vacancy context, optional candidate resume and optional recommended
// questions. User-supplied blocks are brace-escaped before embedding.
func InterviewerTemplate(vacancyText, resumeText, generatedQuestions string) string {
	var b strings.Builder

	b.WriteString(prompts.InterviewerSystem)
	b.WriteString("\n")
	if resumeText != "" {
		fmt.Fprintf(&b, prompts.CandidateInfoBlock, EscapeBraces(resumeText))
		b.WriteString("\n")
	}
	if generatedQuestions != "" {
		fmt.Fprintf(&b, prompts.RecommendedQuestionsBlock, EscapeBraces(generatedQuestions))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nThe vacancy the candidate is applying for:\n%s\n\n", EscapeBraces(vacancyText))
	fmt.Fprintf(&b, "Conduct the interview strictly following this plan:\n%s\n\n", prompts.InterviewPlan)
	b.WriteString("Current dialogue:\n" + historySlot + "\nCandidate: " + inputSlot + "\nYour next question:")

	return b.String()
}

// CandidateTemplate assembles the simulated candidate's template. The stress
// variant uses a deliberately difficult persona.
func CandidateTemplate(resumeText string, stress bool) string {
	system := prompts.CandidateSystem
	if stress {
		system = prompts.StressCandidateSystem
	}
	var b strings.Builder
	fmt.Fprintf(&b, system, EscapeBraces(resumeText))
	b.WriteString("\n\nCurrent dialogue:\n" + historySlot + "\nInterviewer: " + inputSlot + "\nYour answer:")
	return b.String()
}
