package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/extract"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/llm"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/utils"
)

type RankingService interface {
	// AddCandidate stores the raw resume file, extracts its text and creates
	// the candidate row. Extraction failure keeps the candidate with empty
	// text, which later ranks with the failure sentinel.
	AddCandidate(ctx context.Context, vacancyID, name, fileName, contentType string, file []byte) (*models.Candidate, error)

	// RankVacancy scores every candidate of a vacancy and persists the
	// results. The returned list is ranked, sentinel failures last.
	RankVacancy(ctx context.Context, vacancyID string) ([]scoring.Result, error)

	// RankTexts scores ad-hoc resume texts without persistence, for
	// webhook-triggered batch requests.
	RankTexts(ctx context.Context, vacancyText string, resumes []scoring.Resume) []scoring.Result
}

type rankingService struct {
	vacancies  pgrepo.VacancyRepository
	candidates pgrepo.CandidateRepository
	resumes    storage.ResumeStore
	extractor  extract.Extractor
	store      *settings.Store
	log        *logrus.Logger
}

func NewRankingService(
	vacancies pgrepo.VacancyRepository,
	candidates pgrepo.CandidateRepository,
	resumes storage.ResumeStore,
	extractor extract.Extractor,
	store *settings.Store,
	log *logrus.Logger,
) RankingService {
	return &rankingService{
		vacancies:  vacancies,
		candidates: candidates,
		resumes:    resumes,
		extractor:  extractor,
		store:      store,
		log:        log,
	}
}

func (s *rankingService) AddCandidate(ctx context.Context, vacancyID, name, fileName, contentType string, file []byte) (*models.Candidate, error) {
	const op = "RankingService.AddCandidate"

	if vacancyID == "" || len(file) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "vacancy_id and file are required", nil)
	}
	if _, err := s.vacancies.GetByID(ctx, vacancyID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	objectName := path.Join("resumes", vacancyID, id+path.Ext(fileName))

	storedPath := ""
	if s.resumes != nil {
		p, err := s.resumes.Upload(ctx, objectName, contentType, bytes.NewReader(file))
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to store resume file", err)
		}
		storedPath = p
	}

	text, err := s.extractor.Text(file, contentType)
	if err != nil {
		// Unreadable file: keep the candidate; ranking reports the sentinel.
		s.log.WithError(err).WithField("file", fileName).Warn("resume text extraction failed")
		text = ""
	}

	now := time.Now().UTC()
	row := &models.Candidate{
		ID:             id,
		VacancyID:      vacancyID,
		Name:           name,
		ResumeFileName: fileName,
		ResumePath:     storedPath,
		ResumeText:     text,
		Score:          scoring.SentinelScore,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.candidates.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist candidate", err)
	}
	return row, nil
}

func (s *rankingService) RankVacancy(ctx context.Context, vacancyID string) ([]scoring.Result, error) {
	const op = "RankingService.RankVacancy"

	vacancy, err := s.vacancies.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, err
	}
	rows, err := s.candidates.ListByVacancy(ctx, vacancyID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list candidates", err)
	}

	items := make([]scoring.Resume, 0, len(rows))
	for _, c := range rows {
		items = append(items, scoring.Resume{ID: c.ID, Filename: c.ResumeFileName, Text: c.ResumeText})
	}

	results := s.RankTexts(ctx, vacancy.Description, items)

	for _, r := range results {
		keywords, _ := json.Marshal(r.Keywords)
		if err := s.candidates.SetScore(ctx, r.ID, r.Score, r.Summary, datatypes.JSON(keywords)); err != nil {
			s.log.WithError(err).WithField("candidate_id", r.ID).Error("failed to persist ranking result")
		}
	}
	s.log.WithFields(logrus.Fields{"vacancy_id": vacancyID, "outcome": describeRanking(results)}).
		Info("vacancy ranking completed")
	return results, nil
}

func (s *rankingService) RankTexts(ctx context.Context, vacancyText string, resumes []scoring.Resume) []scoring.Result {
	snap := s.store.Snapshot()
	provider := llm.Resolve(snap, s.log)
	pipeline := scoring.NewPipeline(provider, snap.AnalystModel, s.log)
	return pipeline.ScoreAll(ctx, vacancyText, resumes)
}

// RankingPayload is the webhook notification body for a finished ranking run.
type RankingPayload struct {
	Event     string           `json:"event"`
	VacancyID string           `json:"vacancy_id,omitempty"`
	Results   []scoring.Result `json:"results"`
}

func NewRankingPayload(vacancyID string, results []scoring.Result) RankingPayload {
	return RankingPayload{Event: "ranking_completed", VacancyID: vacancyID, Results: results}
}

func describeRanking(results []scoring.Result) string {
	failed := 0
	for _, r := range results {
		if r.Score == scoring.SentinelScore {
			failed++
		}
	}
	return fmt.Sprintf("%d scored, %d failed", len(results)-failed, failed)
}
