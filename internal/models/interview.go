package models

import (
	"time"

	"gorm.io/datatypes"
)

// Interview statuses.
const (
	InterviewStatusActive       = "active"
	InterviewStatusCompleted    = "completed"
	InterviewStatusDisconnected = "disconnected"
	InterviewStatusError        = "error"
)

type Interview struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VacancyID   string `gorm:"column:vacancy_id;type:uuid;index" json:"vacancy_id"`
	CandidateID string `gorm:"column:candidate_id;type:uuid;index" json:"candidate_id"`

	Mode     string `gorm:"column:mode;type:text" json:"mode"` // live|simulation|stress
	Language string `gorm:"column:language;type:text" json:"language"`
	Status   string `gorm:"column:status;type:text" json:"status"`
	Turns    int    `gorm:"column:turns;type:integer" json:"turns"`

	// Report is the analyst's structured assessment of the finished interview.
	Report datatypes.JSON `gorm:"column:report;type:jsonb" json:"report"`

	CreatedAt time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	EndedAt   *time.Time `gorm:"column:ended_at;type:timestamptz" json:"ended_at,omitempty"`
}

func (Interview) TableName() string { return "interviews" }
