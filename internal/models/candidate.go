package models

import (
	"time"

	"gorm.io/datatypes"
)

type Candidate struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VacancyID string `gorm:"column:vacancy_id;type:uuid;index" json:"vacancy_id"`
	Name      string `gorm:"column:name;type:text" json:"name"`

	ResumeFileName string `gorm:"column:resume_file_name;type:text" json:"resume_file_name"`
	// ResumePath is the object name in the resume bucket; the raw file lives in
	// object storage, only extracted text is kept here.
	ResumePath string `gorm:"column:resume_path;type:text" json:"resume_path"`
	ResumeText string `gorm:"column:resume_text;type:text" json:"resume_text"`

	// Score is -1 until ranked, or when ranking failed for this candidate.
	Score        int            `gorm:"column:score;type:integer;default:-1" json:"score"`
	ScoreSummary string         `gorm:"column:score_summary;type:text" json:"score_summary"`
	Keywords     datatypes.JSON `gorm:"column:keywords;type:jsonb" json:"keywords"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Candidate) TableName() string { return "candidates" }
