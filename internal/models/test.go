package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestDefinition is the reusable template a session is created from.
// Definitions are immutable after creation; administrative edits go through
// a separate tooling path and are not part of this service.
type TestDefinition struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// TestID is the globally unique business key clients reference.
	TestID      string  `json:"test_id" gorm:"not null;uniqueIndex;size:255" validate:"required"`
	Title       string  `json:"title" gorm:"not null;size:500" validate:"required,max=500"`
	Description *string `json:"description" gorm:"type:text"`

	// TimeAllotted is the advisory wall-clock limit in seconds. The engine
	// records it for clients; expiry is client-driven.
	TimeAllotted int `json:"time_allotted" gorm:"not null;default:0"`

	// Scheme defaults, applied when a pool question carries no marks of its own.
	Marks       float64 `json:"marks" gorm:"default:1"`
	MaxNegMarks float64 `json:"max_neg_marks" gorm:"default:0"`

	// QuestionPool holds the ordered question ids ([]string) eligible for
	// this test. References must resolve in the content catalog.
	QuestionPool datatypes.JSON `json:"question_pool" gorm:"type:jsonb;not null"`

	AllowRandomize bool           `json:"allow_randomize" gorm:"default:false"`
	MaxAttempt     int            `json:"max_attempt" gorm:"default:1" validate:"min=1"`
	Languages      datatypes.JSON `json:"languages" gorm:"type:jsonb"` // []string

	CreatedBy string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TestDefinition) TableName() string {
	return "test_definitions"
}
