package scoring

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/utils"
)

type scriptedProvider struct {
	calls   atomic.Int64
	byText  map[string]string
	failAll bool
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) SupportedModels() []string { return []string{"test-model"} }
func (p *scriptedProvider) TestConnection(ctx context.Context) bool {
	return true
}

func (p *scriptedProvider) GenerateText(ctx context.Context, prompt, model string, temperature float64) (llm.Result, error) {
	p.calls.Add(1)
	if p.failAll {
		return llm.Result{}, utils.E(utils.CodeProviderFailed, "scriptedProvider.GenerateText", "backend down", nil)
	}
	for marker, out := range p.byText {
		if marker != "" && strings.Contains(prompt, marker) {
			return llm.Result{Text: out}, nil
		}
	}
	return llm.Result{Text: `{"score": 50, "summary": "ok", "keywords": []}`}, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestScoreAllRanksAndIsolatesEmptyText(t *testing.T) {
	provider := &scriptedProvider{byText: map[string]string{
		"resume-one": `{"score": 72, "summary": "solid", "keywords": ["go", "sql"]}`,
		"resume-three": "```json\n" +
			`{"score": 91, "summary": "excellent", "keywords": ["go"]}` + "\n```",
	}}
	p := NewPipeline(provider, "test-model", testLogger())

	resumes := []Resume{
		{ID: "1", Filename: "a.pdf", Text: "resume-one"},
		{ID: "2", Filename: "b.pdf", Text: ""},
		{ID: "3", Filename: "c.pdf", Text: "resume-three"},
	}
	results := p.ScoreAll(context.Background(), "Looking for a backend engineer", resumes)

	require.Len(t, results, 3)
	assert.Equal(t, "3", results[0].ID)
	assert.Equal(t, 91, results[0].Score)
	assert.Equal(t, "1", results[1].ID)
	assert.Equal(t, 72, results[1].Score)

	// Empty text sinks to the bottom with the sentinel, no provider call made.
	assert.Equal(t, "2", results[2].ID)
	assert.Equal(t, SentinelScore, results[2].Score)
	assert.Contains(t, results[2].Keywords, "ERROR")
	assert.EqualValues(t, 2, provider.calls.Load())
}

func TestScoreAllStableTieBreak(t *testing.T) {
	provider := &scriptedProvider{}
	p := NewPipeline(provider, "test-model", testLogger())
	p.Concurrency = 1

	resumes := []Resume{
		{ID: "first", Text: "same"},
		{ID: "second", Text: "same"},
		{ID: "third", Text: "same"},
	}
	results := p.ScoreAll(context.Background(), "vacancy", resumes)

	require.Len(t, results, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, want, results[i].ID)
		assert.Equal(t, 50, results[i].Score)
	}
}

func TestScoreAllProviderFailureBecomesSentinel(t *testing.T) {
	provider := &scriptedProvider{failAll: true}
	p := NewPipeline(provider, "test-model", testLogger())

	results := p.ScoreAll(context.Background(), "vacancy", []Resume{{ID: "1", Text: "something"}})
	require.Len(t, results, 1)
	assert.Equal(t, SentinelScore, results[0].Score)
	assert.NotEmpty(t, results[0].Summary)
	assert.Equal(t, []string{"ERROR"}, results[0].Keywords)
}

func TestScoreAllUnparseableOutputBecomesSentinel(t *testing.T) {
	provider := &scriptedProvider{byText: map[string]string{
		"resume-one": "I would rate this resume quite highly overall.",
	}}
	p := NewPipeline(provider, "test-model", testLogger())

	results := p.ScoreAll(context.Background(), "vacancy", []Resume{{ID: "1", Text: "resume-one"}})
	require.Len(t, results, 1)
	assert.Equal(t, SentinelScore, results[0].Score)
	assert.Contains(t, results[0].Keywords, "ERROR")
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Here you go: {\"a\": 1} hope it helps", `{"a": 1}`},
		{`["x", "y"]`, `["x", "y"]`},
		{"no json here", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractJSON(c.in), fmt.Sprintf("input %q", c.in))
	}
}

func TestScoreClamping(t *testing.T) {
	provider := &scriptedProvider{byText: map[string]string{
		"resume-one": `{"score": 140, "summary": "over", "keywords": []}`,
	}}
	p := NewPipeline(provider, "test-model", testLogger())

	results := p.ScoreAll(context.Background(), "vacancy", []Resume{{ID: "1", Text: "resume-one"}})
	require.Len(t, results, 1)
	assert.Equal(t, 100, results[0].Score)
}
