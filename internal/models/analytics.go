package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestAnalytics is an append-only fact record: one row per evaluated
// session, denormalized for historical reporting. Rows are never updated.
type TestAnalytics struct {
	ID uint `json:"id" gorm:"primaryKey"`

	SessionID     string `json:"session_id" gorm:"not null;uniqueIndex;size:36"`
	UserID        string `json:"user_id" gorm:"not null;index;size:255"`
	TestID        string `json:"test_id" gorm:"not null;index;size:255"`
	AttemptNumber int    `json:"attempt_number"`

	TotalMarks    float64 `json:"total_marks"`
	NegativeMarks float64 `json:"negative_marks"`
	CorrectCount  int     `json:"correct_count"`
	WrongCount    int     `json:"wrong_count"`
	SkippedCount  int     `json:"skipped_count"`
	Accuracy      float64 `json:"accuracy"`

	// SubjectBreakdown is map[subjectID]SubjectStat stored as JSONB.
	SubjectBreakdown datatypes.JSON `json:"subject_breakdown" gorm:"type:jsonb"`

	EvaluatedAt time.Time `json:"evaluated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TestAnalytics) TableName() string {
	return "test_analytics"
}
