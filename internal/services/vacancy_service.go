package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/cache"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/prompts"
	"github.com/hirevox/hirevox/internal/providers/llm"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

const summaryCacheTTL = 24 * time.Hour

type VacancyService interface {
	Create(ctx context.Context, title, description string, criteriaWeights datatypes.JSON) (*models.Vacancy, error)
	Get(ctx context.Context, id string) (*models.Vacancy, error)
	List(ctx context.Context, limit int) ([]models.Vacancy, error)

	// SummarizeTechRequirements condenses a vacancy description into a short
	// requirements list, cached by content so repeated sessions skip the call.
	SummarizeTechRequirements(ctx context.Context, vacancyText string) (string, error)

	// BuildDescription rewrites a draft into a full job description honoring
	// the criteria weights.
	BuildDescription(ctx context.Context, draft string, criteriaWeights datatypes.JSON) (string, error)

	// GenerateQuestions produces recommended interview questions for a stored
	// vacancy and persists them.
	GenerateQuestions(ctx context.Context, vacancyID string) (string, error)

	// GenerateTags extracts a skill tag cloud for a stored vacancy and
	// persists it.
	GenerateTags(ctx context.Context, vacancyID string) ([]string, error)
}

type vacancyService struct {
	repo  pgrepo.VacancyRepository
	cache cache.Cache
	store *settings.Store
	log   *logrus.Logger
}

func NewVacancyService(repo pgrepo.VacancyRepository, c cache.Cache, store *settings.Store, log *logrus.Logger) VacancyService {
	return &vacancyService{repo: repo, cache: c, store: store, log: log}
}

func (s *vacancyService) Create(ctx context.Context, title, description string, criteriaWeights datatypes.JSON) (*models.Vacancy, error) {
	const op = "VacancyService.Create"

	if strings.TrimSpace(description) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "description is required", nil)
	}

	now := time.Now().UTC()
	row := &models.Vacancy{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     description,
		CriteriaWeights: criteriaWeights,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist vacancy", err)
	}
	return row, nil
}

func (s *vacancyService) Get(ctx context.Context, id string) (*models.Vacancy, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *vacancyService) List(ctx context.Context, limit int) ([]models.Vacancy, error) {
	return s.repo.List(ctx, limit)
}

func (s *vacancyService) SummarizeTechRequirements(ctx context.Context, vacancyText string) (string, error) {
	const op = "VacancyService.SummarizeTechRequirements"

	if strings.TrimSpace(vacancyText) == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "vacancy text is required", nil)
	}

	key := cache.VacancySummaryKey(vacancyText)
	if s.cache != nil {
		var cached string
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	summary, err := s.generate(ctx, fmt.Sprintf(prompts.VacancyTechSummary, vacancyText))
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, summary, summaryCacheTTL); err != nil {
			s.log.WithError(err).Warn("failed to cache vacancy summary")
		}
	}
	return summary, nil
}

func (s *vacancyService) BuildDescription(ctx context.Context, draft string, criteriaWeights datatypes.JSON) (string, error) {
	const op = "VacancyService.BuildDescription"

	if strings.TrimSpace(draft) == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "draft text is required", nil)
	}
	weights := "{}"
	if len(criteriaWeights) > 0 {
		weights = string(criteriaWeights)
	}
	return s.generate(ctx, fmt.Sprintf(prompts.VacancyBuilder, draft, weights))
}

func (s *vacancyService) GenerateQuestions(ctx context.Context, vacancyID string) (string, error) {
	const op = "VacancyService.GenerateQuestions"

	row, err := s.repo.GetByID(ctx, vacancyID)
	if err != nil {
		return "", err
	}

	questions, err := s.generate(ctx, fmt.Sprintf(prompts.QuestionGen, row.Description))
	if err != nil {
		return "", err
	}
	if err := s.repo.SetRecommendedQuestions(ctx, vacancyID, questions); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to persist questions", err)
	}
	return questions, nil
}

func (s *vacancyService) GenerateTags(ctx context.Context, vacancyID string) ([]string, error) {
	const op = "VacancyService.GenerateTags"

	row, err := s.repo.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, fmt.Sprintf(prompts.TagCloud, row.Description))
	if err != nil {
		return nil, err
	}

	body := scoring.ExtractJSON(raw)
	var tags []string
	if err := json.Unmarshal([]byte(body), &tags); err != nil {
		return nil, utils.E(utils.CodeParseFailed, op, "tag cloud output is not a JSON array", err)
	}

	encoded, _ := json.Marshal(tags)
	if err := s.repo.SetTags(ctx, vacancyID, datatypes.JSON(encoded)); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist tags", err)
	}
	return tags, nil
}

func (s *vacancyService) generate(ctx context.Context, prompt string) (string, error) {
	snap := s.store.Snapshot()
	provider := llm.Resolve(snap, s.log)

	res, err := provider.GenerateText(ctx, prompt, snap.QuestionGenModel, 0.3)
	if err != nil {
		return "", err
	}
	if res.SubstitutedModel != "" {
		s.log.WithFields(logrus.Fields{"requested": snap.QuestionGenModel, "used": res.SubstitutedModel}).
			Warn("model substituted")
	}
	return strings.TrimSpace(res.Text), nil
}
