package models

import (
	"time"

	"gorm.io/datatypes"
)

type Vacancy struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`

	// TechSummary is the condensed requirements list derived from Description.
	TechSummary string `gorm:"column:tech_summary;type:text" json:"tech_summary"`

	// CriteriaWeights is a JSON object of criterion -> weight used by vacancy
	// building and interview analysis.
	CriteriaWeights datatypes.JSON `gorm:"column:criteria_weights;type:jsonb" json:"criteria_weights"`

	// Tags is a JSON array of short skill tags extracted from the description.
	Tags datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`

	RecommendedQuestions string `gorm:"column:recommended_questions;type:text" json:"recommended_questions"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Vacancy) TableName() string { return "vacancies" }
