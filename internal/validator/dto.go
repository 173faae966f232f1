package validator

import "time"

// TestCreateRequest represents the request structure for publishing a test
type TestCreateRequest struct {
	TestID         string   `json:"test_id" validate:"required,min=1,max=64"`
	Title          string   `json:"title" validate:"required,test_title"`
	Description    *string  `json:"description" validate:"omitempty,test_description"`
	TimeAllotted   int      `json:"time_allotted" validate:"required,test_duration"`
	Marks          float64  `json:"marks" validate:"required,gt=0"`
	MaxNegMarks    float64  `json:"max_neg_marks"`
	QuestionPool   []string `json:"question_pool" validate:"required,min=1,max=500"`
	AllowRandomize bool     `json:"allow_randomize"`
	MaxAttempt     int      `json:"max_attempt" validate:"omitempty,max_attempts"`
	Languages      []string `json:"languages" validate:"omitempty,dive,min=2,max=8"`
}

// SessionCreateRequest represents the request structure for starting a session
type SessionCreateRequest struct {
	TestID   string  `json:"test_id" validate:"required,min=1,max=64"`
	SeriesID *string `json:"series_id" validate:"omitempty,max=64"`

	// QuestionOrder, when present, is used verbatim instead of the
	// generated order. It must be a permutation of the test's pool.
	QuestionOrder []string `json:"question_order" validate:"omitempty,max=500"`

	// RandomSeed makes the shuffle reproducible when supplied.
	RandomSeed string                 `json:"random_seed" validate:"omitempty,max=64"`
	Meta       map[string]interface{} `json:"meta"`
}

// SessionResponseUpdate is the per-question payload inside a session update.
// Scoring fields are server-owned and deliberately absent.
type SessionResponseUpdate struct {
	SelectedIDs []string               `json:"selected_ids" validate:"omitempty,max=26"`
	Answer      string                 `json:"answer" validate:"omitempty,max=2000"`
	TimeSpent   int                    `json:"time_spent" validate:"omitempty,min=0"`
	Order       int                    `json:"order" validate:"omitempty,min=0"`
	Flagged     bool                   `json:"flagged"`
	Meta        map[string]interface{} `json:"meta"`
}

// SessionUpdateRequest represents the whole-document session update used for
// response recording and heartbeats. Every write refreshes last_seen_at.
type SessionUpdateRequest struct {
	Responses map[string]SessionResponseUpdate `json:"responses" validate:"omitempty,dive"`
	TimeSpent *int                             `json:"time_spent" validate:"omitempty,min=0"`
	Status    *string                          `json:"status" validate:"omitempty,oneof=cancelled submitted"`

	// LastSeenAt overrides the heartbeat stamp, for backfill tooling.
	// Normal clients leave it empty and get server time.
	LastSeenAt *time.Time `json:"last_seen_at"`
}
