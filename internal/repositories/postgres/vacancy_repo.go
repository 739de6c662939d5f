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

type VacancyRepository interface {
	Insert(ctx context.Context, v *models.Vacancy) error
	GetByID(ctx context.Context, id string) (*models.Vacancy, error)
	List(ctx context.Context, limit int) ([]models.Vacancy, error)
	SetTechSummary(ctx context.Context, id, summary string) error
	SetRecommendedQuestions(ctx context.Context, id, questions string) error
	SetTags(ctx context.Context, id string, tags datatypes.JSON) error
}

type vacancyRepo struct {
	db *gorm.DB
}

func NewVacancyRepo(db *gorm.DB) VacancyRepository {
	return &vacancyRepo{db: db}
}

func (r *vacancyRepo) Insert(ctx context.Context, v *models.Vacancy) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *vacancyRepo) GetByID(ctx context.Context, id string) (*models.Vacancy, error) {
	var row models.Vacancy
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *vacancyRepo) List(ctx context.Context, limit int) ([]models.Vacancy, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Vacancy
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *vacancyRepo) SetTechSummary(ctx context.Context, id, summary string) error {
	return r.updateColumns(ctx, id, map[string]any{"tech_summary": summary})
}

func (r *vacancyRepo) SetRecommendedQuestions(ctx context.Context, id, questions string) error {
	return r.updateColumns(ctx, id, map[string]any{"recommended_questions": questions})
}

func (r *vacancyRepo) SetTags(ctx context.Context, id string, tags datatypes.JSON) error {
	return r.updateColumns(ctx, id, map[string]any{"tags": tags})
}

func (r *vacancyRepo) updateColumns(ctx context.Context, id string, cols map[string]any) error {
	cols["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Vacancy{}).
		Where("id = ?", id).
		Updates(cols).Error
}
