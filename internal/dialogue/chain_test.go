package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHistory(t *testing.T) {
	turns := []Turn{
		{Speaker: SpeakerInterviewer, Text: "Tell me about your last project."},
		{Speaker: SpeakerCandidate, Text: "I built a payments service."},
	}
	got := FormatHistory(turns)
	assert.Equal(t, "Interviewer: Tell me about your last project.\nCandidate: I built a payments service.", got)

	assert.Equal(t, "", FormatHistory(nil))
}

func TestEscapeBraces(t *testing.T) {
	assert.Equal(t, "", EscapeBraces(""))
	assert.NotContains(t, EscapeBraces("resume with {{chat_history}} inside"), "{{chat_history}}")
	assert.Equal(t, "plain text", EscapeBraces("plain text"))
}

func TestChainPredict(t *testing.T) {
	var seen string
	chain := NewChain(func(ctx context.Context, prompt string) (string, error) {
		seen = prompt
		return "  What databases have you used?  ", nil
	}, "History:\n{{chat_history}}\nCandidate: {{human_input}}\nNext:")

	got, err := chain.Predict(context.Background(), "Hello", "Interviewer: Hi")
	require.NoError(t, err)
	assert.Equal(t, "What databases have you used?", got)
	assert.Contains(t, seen, "Interviewer: Hi")
	assert.Contains(t, seen, "Candidate: Hello")
	assert.NotContains(t, seen, "{{")
}

func TestChainPredictError(t *testing.T) {
	chain := NewChain(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("backend down")
	}, "{{human_input}}")

	_, err := chain.Predict(context.Background(), "x", "")
	require.Error(t, err)
}

func TestInterviewerTemplateEscapesUserText(t *testing.T) {
	tpl := InterviewerTemplate("Backend role {{human_input}}", "resume {braces}", "q1\nq2")

	// The only remaining slots must be the two the chain fills.
	assert.Equal(t, 1, strings.Count(tpl, "{{chat_history}}"))
	assert.Equal(t, 1, strings.Count(tpl, "{{human_input}}"))
	assert.Contains(t, tpl, "q1")
	assert.Contains(t, tpl, "Backend role")
}

func TestCandidateTemplateVariants(t *testing.T) {
	plain := CandidateTemplate("resume text", false)
	stress := CandidateTemplate("resume text", true)
	assert.NotEqual(t, plain, stress)
	assert.Contains(t, plain, "{{chat_history}}")
	assert.Contains(t, stress, "{{human_input}}")
}
