package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
	SessionEvaluated  SessionStatus = "evaluated"
	SessionCancelled  SessionStatus = "cancelled"
)

// ExamSession is one user's attempt at a test. Mutable while in_progress,
// frozen once evaluated. Sessions are never physically deleted; cancelled
// and evaluated rows are retained for analytics and audit.
type ExamSession struct {
	ID string `json:"id" gorm:"primaryKey;size:36"`

	UserID        string  `json:"user_id" gorm:"not null;index:idx_user_test;size:255"`
	TestID        string  `json:"test_id" gorm:"not null;index:idx_user_test;size:255"`
	SeriesID      *string `json:"series_id" gorm:"index;size:255"`
	AttemptNumber int     `json:"attempt_number" gorm:"not null;default:1"`

	// QuestionOrder ([]string) is fixed at creation and defines the order
	// semantics of responses. RandomSeed is recorded for audit; it only
	// guarantees reproducibility when the caller supplied it.
	QuestionOrder datatypes.JSON `json:"question_order" gorm:"type:jsonb;not null"`
	RandomSeed    string         `json:"random_seed" gorm:"size:255"`

	// Responses is a map[questionID]SessionResponse stored as JSONB.
	// Updates replace the whole map (last write wins at document level).
	Responses datatypes.JSON `json:"responses" gorm:"type:jsonb"`

	// Aggregates, derived by evaluation; never client-authoritative.
	CorrectCount  int            `json:"correct_count"`
	WrongCount    int            `json:"wrong_count"`
	SkippedCount  int            `json:"skipped_count"`
	TotalMarks    float64        `json:"total_marks"`
	NegativeMarks float64        `json:"negative_marks"`
	Accuracy      float64        `json:"accuracy"`
	SubjectStats  datatypes.JSON `json:"subject_stats" gorm:"type:jsonb"` // map[subjectID]SubjectStat

	// Timing
	StartedAt   time.Time  `json:"started_at"`
	LastSeenAt  time.Time  `json:"last_seen_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	TimeSpent   int        `json:"time_spent"` // seconds

	Status SessionStatus `json:"status" gorm:"default:in_progress;index"`

	// EvaluationSnapshot is the scoring output stored verbatim at submit.
	EvaluationSnapshot datatypes.JSON `json:"evaluation_snapshot" gorm:"type:jsonb"`
	IsAnalysisVisible  bool           `json:"is_analysis_visible" gorm:"default:false"`

	// Free-form client metadata (device info, app version, ...).
	Meta datatypes.JSON `json:"meta" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// SessionResponse is one question's answer state inside a session.
// SelectedIDs grades order-insensitively; Answer carries free-text/numeric
// input for integer and fill_blank kinds. MarksAwarded and IsCorrect are
// written by evaluation only.
type SessionResponse struct {
	SelectedIDs  []string       `json:"selected_ids,omitempty"`
	Answer       string         `json:"answer,omitempty"`
	MarksAwarded float64        `json:"marks_awarded"`
	IsCorrect    *bool          `json:"is_correct,omitempty"`
	TimeSpent    int            `json:"time_spent"`
	Order        int            `json:"order"`
	Flagged      bool           `json:"flagged"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// Answered reports whether the response carries any answer content.
// Unanswered responses are skipped during evaluation.
func (r SessionResponse) Answered() bool {
	return len(r.SelectedIDs) > 0 || r.Answer != ""
}

// SubjectStat is one subject's bucket inside the per-subject breakdown.
type SubjectStat struct {
	Marks   float64 `json:"marks"`
	Correct int     `json:"correct"`
	Wrong   int     `json:"wrong"`
	Skipped int     `json:"skipped"`
}

// DecodeQuestionOrder returns the session's fixed question id sequence.
func (s *ExamSession) DecodeQuestionOrder() []string {
	var order []string
	if len(s.QuestionOrder) > 0 {
		_ = json.Unmarshal(s.QuestionOrder, &order)
	}
	return order
}

// DecodeResponses returns the session's response map, never nil.
func (s *ExamSession) DecodeResponses() map[string]SessionResponse {
	responses := make(map[string]SessionResponse)
	if len(s.Responses) > 0 {
		_ = json.Unmarshal(s.Responses, &responses)
	}
	return responses
}
