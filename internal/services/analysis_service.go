package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/prompts"
	"github.com/hirevox/hirevox/internal/providers/llm"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// InterviewReport is the analyst's structured assessment.
type InterviewReport struct {
	FinalScore int      `json:"final_score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Verdict    string   `json:"verdict"` // hire|no_hire|borderline
	Summary    string   `json:"summary"`
}

type AnalysisService interface {
	// AnalyzeInterview builds the assessment for a finished interview from its
	// transcript, the vacancy and the candidate's resume, and persists it.
	AnalyzeInterview(ctx context.Context, interviewID string) (*InterviewReport, error)

	// AnalyzeDialogue assesses an ad-hoc dialogue without persistence, for
	// webhook-triggered requests.
	AnalyzeDialogue(ctx context.Context, vacancyText, resumeText, criteriaWeights, dialogue string) (*InterviewReport, error)
}

type analysisService struct {
	interviews  pgrepo.InterviewRepository
	vacancies   pgrepo.VacancyRepository
	candidates  pgrepo.CandidateRepository
	transcripts mongorepo.TranscriptRepository
	store       *settings.Store
	log         *logrus.Logger
}

func NewAnalysisService(
	interviews pgrepo.InterviewRepository,
	vacancies pgrepo.VacancyRepository,
	candidates pgrepo.CandidateRepository,
	transcripts mongorepo.TranscriptRepository,
	store *settings.Store,
	log *logrus.Logger,
) AnalysisService {
	return &analysisService{
		interviews:  interviews,
		vacancies:   vacancies,
		candidates:  candidates,
		transcripts: transcripts,
		store:       store,
		log:         log,
	}
}

func (s *analysisService) AnalyzeInterview(ctx context.Context, interviewID string) (*InterviewReport, error) {
	const op = "AnalysisService.AnalyzeInterview"

	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	transcript, err := s.transcripts.GetBySessionID(ctx, iv.ID)
	if err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "no transcript for interview", err)
	}

	vacancyText := ""
	weights := "{}"
	if vacancy, verr := s.vacancies.GetByID(ctx, iv.VacancyID); verr == nil {
		vacancyText = vacancy.Description
		if len(vacancy.CriteriaWeights) > 0 {
			weights = string(vacancy.CriteriaWeights)
		}
	}
	resumeText := ""
	if candidate, cerr := s.candidates.GetByID(ctx, iv.CandidateID); cerr == nil {
		resumeText = candidate.ResumeText
	}

	report, err := s.AnalyzeDialogue(ctx, vacancyText, resumeText, weights, formatTranscript(transcript.Turns))
	if err != nil {
		return nil, err
	}

	encoded, _ := json.Marshal(report)
	if err := s.interviews.SetReport(ctx, interviewID, datatypes.JSON(encoded)); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist report", err)
	}
	return report, nil
}

func (s *analysisService) AnalyzeDialogue(ctx context.Context, vacancyText, resumeText, criteriaWeights, dialogue string) (*InterviewReport, error) {
	const op = "AnalysisService.AnalyzeDialogue"

	if strings.TrimSpace(dialogue) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "dialogue is required", nil)
	}
	if criteriaWeights == "" {
		criteriaWeights = "{}"
	}

	snap := s.store.Snapshot()
	provider := llm.Resolve(snap, s.log)

	prompt := fmt.Sprintf(prompts.InterviewAnalyst, vacancyText, resumeText, criteriaWeights, dialogue)
	res, err := provider.GenerateText(ctx, prompt, snap.AnalystModel, 0.2)
	if err != nil {
		return nil, err
	}

	body := scoring.ExtractJSON(res.Text)
	var report InterviewReport
	if uerr := json.Unmarshal([]byte(body), &report); uerr != nil {
		s.log.WithField("raw", res.Text).Error("analyst output is not valid JSON")
		return nil, utils.E(utils.CodeParseFailed, op, "analyst output is not valid JSON", uerr)
	}
	return &report, nil
}

func formatTranscript(turns []models.TranscriptTurn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Speaker+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}
