package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionKind string

const (
	KindMCQ       QuestionKind = "mcq"
	KindMSQ       QuestionKind = "msq"
	KindTrueFalse QuestionKind = "true_false"
	KindInteger   QuestionKind = "integer"
	KindFillBlank QuestionKind = "fill_blank"
)

// Question is the engine's read model of the content catalog. The catalog
// service owns these rows; the engine only resolves them at session
// creation (existence checks) and submission (batch resolve for scoring).
type Question struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	QuestionID string       `json:"question_id" gorm:"not null;uniqueIndex;size:255"`
	Kind       QuestionKind `json:"kind" gorm:"not null;index;size:32"`
	Text       string       `json:"text" gorm:"type:text"`

	// Options and Correct are kind-dependent payloads stored as JSONB.
	// Correct decodes into CorrectSpec; see DecodeCorrect.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`
	Correct datatypes.JSON `json:"correct" gorm:"type:jsonb"`

	Marks    float64 `json:"marks" gorm:"default:1"`
	NegMarks float64 `json:"neg_marks" gorm:"default:0"`

	// Subject/chapter grouping inside the content hierarchy.
	SubjectID *string `json:"subject_id" gorm:"index;size:255"`
	ChapterID *string `json:"chapter_id" gorm:"index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Option is one selectable choice for mcq/msq/true_false questions.
type Option struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

// CorrectSpec is the tagged answer-key variant. Exactly one branch is
// populated depending on the question kind:
//
//	mcq/msq/true_false -> OptionIDs
//	integer            -> Integer (may be absent: such responses score zero)
//	fill_blank         -> Fills, or Integer for numeric blanks
type CorrectSpec struct {
	OptionIDs []string `json:"option_ids,omitempty"`
	Integer   *float64 `json:"integer,omitempty"`
	Fills     []string `json:"fills,omitempty"`
}

// DecodeCorrect parses the question's answer key. A missing or malformed
// key yields an empty spec, never an error: scoring degrades the response
// to a zero-mark outcome instead of aborting evaluation.
func (q *Question) DecodeCorrect() CorrectSpec {
	var spec CorrectSpec
	if len(q.Correct) == 0 {
		return spec
	}
	if err := json.Unmarshal(q.Correct, &spec); err != nil {
		return CorrectSpec{}
	}
	return spec
}
