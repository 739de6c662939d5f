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

type InterviewRepository interface {
	Insert(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListByVacancy(ctx context.Context, vacancyID string) ([]models.Interview, error)
	End(ctx context.Context, id, status string, turns int, endedAt time.Time) error
	SetReport(ctx context.Context, id string, report datatypes.JSON) error
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Insert(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var row models.Interview
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *interviewRepo) ListByVacancy(ctx context.Context, vacancyID string) ([]models.Interview, error) {
	var rows []models.Interview
	err := r.db.WithContext(ctx).
		Where("vacancy_id = ?", vacancyID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) End(ctx context.Context, id, status string, turns int, endedAt time.Time) error {
	ended := endedAt.UTC()
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   status,
			"turns":    turns,
			"ended_at": &ended,
		}).Error
}

func (r *interviewRepo) SetReport(ctx context.Context, id string, report datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Update("report", report).Error
}
