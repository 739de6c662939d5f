// Package scoring evaluates candidate resumes against a vacancy, one LLM call
// per resume, and produces a deterministic ranking. Failures are isolated per
// item and reported as sentinel results rather than aborting the batch.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/prompts"
	"github.com/hirevox/hirevox/internal/providers/llm"
	"golang.org/x/sync/errgroup"
)

// SentinelScore marks an item whose scoring failed. It is never a genuine
// score; real scores are in [0, 100].
const SentinelScore = -1

const errorKeyword = "ERROR"

type Resume struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type Result struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Score    int      `json:"score"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// Pipeline scores resumes with the given provider and model. Concurrency
// bounds the number of in-flight provider calls per batch.
type Pipeline struct {
	Provider    llm.Provider
	Model       string
	Temperature float64
	Concurrency int
	Log         *logrus.Logger
}

func NewPipeline(provider llm.Provider, model string, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		Provider:    provider,
		Model:       model,
		Temperature: 0.1,
		Concurrency: 4,
		Log:         log,
	}
}

// ScoreAll scores every resume against the vacancy and returns the results
// sorted by score descending. Ties keep submission order, and sentinel
// failures sort to the bottom. The returned list always has the same length
// as the input.
func (p *Pipeline) ScoreAll(ctx context.Context, vacancyText string, resumes []Resume) []Result {
	results := make([]Result, len(resumes))

	g, gctx := errgroup.WithContext(ctx)
	limit := p.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, r := range resumes {
		i, r := i, r
		g.Go(func() error {
			results[i] = p.scoreOne(gctx, vacancyText, r)
			return nil
		})
	}
	// Workers never return errors; failures become sentinel results.
	_ = g.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results
}

func (p *Pipeline) scoreOne(ctx context.Context, vacancyText string, r Resume) Result {
	if strings.TrimSpace(r.Text) == "" {
		return sentinel(r, "empty resume text, nothing to score")
	}

	prompt := fmt.Sprintf(prompts.ResumeScorer, vacancyText, r.Text)
	gen, err := p.Provider.GenerateText(ctx, prompt, p.Model, p.Temperature)
	if err != nil {
		p.Log.WithError(err).WithField("resume_id", r.ID).Error("resume scoring call failed")
		return sentinel(r, err.Error())
	}
	if gen.SubstitutedModel != "" {
		p.Log.WithFields(logrus.Fields{
			"requested": p.Model,
			"used":      gen.SubstitutedModel,
		}).Warn("scoring model substituted")
	}

	parsed, err := parseScorePayload(gen.Text)
	if err != nil {
		p.Log.WithError(err).WithFields(logrus.Fields{
			"resume_id": r.ID,
			"raw":       gen.Text,
		}).Error("resume scoring output is not valid JSON")
		return sentinel(r, err.Error())
	}

	score := parsed.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Result{
		ID:       r.ID,
		Filename: r.Filename,
		Score:    score,
		Summary:  parsed.Summary,
		Keywords: parsed.Keywords,
	}
}

func sentinel(r Resume, summary string) Result {
	return Result{
		ID:       r.ID,
		Filename: r.Filename,
		Score:    SentinelScore,
		Summary:  summary,
		Keywords: []string{errorKeyword},
	}
}

type scorePayload struct {
	Score    int      `json:"score"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// parseScorePayload extracts the JSON object from a model response, tolerating
// code fences and surrounding prose.
func parseScorePayload(raw string) (scorePayload, error) {
	var payload scorePayload

	body := ExtractJSON(raw)
	if body == "" {
		return payload, fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return payload, fmt.Errorf("decode score payload: %w", err)
	}
	return payload, nil
}

// ExtractJSON returns the outermost JSON value in raw, stripping markdown code
// fences first. Returns "" when no object or array is present.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(s, pair[0])
		end := strings.LastIndex(s, pair[1])
		if start >= 0 && end > start {
			return s[start : end+1]
		}
	}
	return ""
}
