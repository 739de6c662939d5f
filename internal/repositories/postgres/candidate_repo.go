package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Insert(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	ListByVacancy(ctx context.Context, vacancyID string) ([]models.Candidate, error)
	// SetScore records one ranking result for a candidate.
	SetScore(ctx context.Context, id string, score int, summary string, keywords datatypes.JSON) error
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	var row models.Candidate
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *candidateRepo) ListByVacancy(ctx context.Context, vacancyID string) ([]models.Candidate, error) {
	var rows []models.Candidate
	err := r.db.WithContext(ctx).
		Where("vacancy_id = ?", vacancyID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *candidateRepo) SetScore(ctx context.Context, id string, score int, summary string, keywords datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"score":         score,
			"score_summary": summary,
			"keywords":      keywords,
			"updated_at":    time.Now().UTC(),
		}).Error
}
