package repositories

import (
	"context"
	"time"

	"github.com/prepnest/exam-engine/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	CreatedBy *string    `json:"created_by"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "title"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	Status   *models.SessionStatus `json:"status"`
	UserID   *string               `json:"user_id"`
	TestID   *string               `json:"test_id"`
	SeriesID *string               `json:"series_id"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type AnalyticsFilters struct {
	UserID   *string    `json:"user_id"`
	TestID   *string    `json:"test_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type TestAttemptStats struct {
	TotalSessions     int                          `json:"total_sessions"`
	StatusBreakdown   map[models.SessionStatus]int `json:"status_breakdown"`
	AverageMarks      float64                      `json:"average_marks"`
	AverageAccuracy   float64                      `json:"average_accuracy"`
	HighestMarks      float64                      `json:"highest_marks"`
	AverageTimeSpent  int                          `json:"average_time_spent"`
	EvaluatedSessions int                          `json:"evaluated_sessions"`
}

// ===== REPOSITORY INTERFACES =====

// TestRepository stores immutable test definitions.
type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.TestDefinition) error
	GetByTestID(ctx context.Context, tx *gorm.DB, testID string) (*models.TestDefinition, error)
	ExistsByTestID(ctx context.Context, tx *gorm.DB, testID string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.TestDefinition, int64, error)
}

// SessionRepository is the durable store of per-user attempt state.
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error)

	// GetByIDForUpdate reads straight from the store, bypassing the
	// session cache. Mutating paths use it so a freshly written response
	// document is never shadowed by a stale cached copy.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error)

	Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.ExamSession, int64, error)

	// GetActiveSession returns the single in_progress session for the
	// (user, test) pair, or gorm.ErrRecordNotFound.
	GetActiveSession(ctx context.Context, tx *gorm.DB, userID, testID string) (*models.ExamSession, error)

	// CountByUserAndTest counts all historical sessions for the pair,
	// regardless of status. Used for attempt numbering.
	CountByUserAndTest(ctx context.Context, tx *gorm.DB, userID, testID string) (int, error)

	// MarkEvaluated conditionally transitions the session out of
	// in_progress, writing aggregates and snapshot in one statement.
	// Returns false when the session was no longer in_progress, so
	// concurrent submitters lose cleanly.
	MarkEvaluated(ctx context.Context, tx *gorm.DB, session *models.ExamSession) (bool, error)

	GetStatsByTest(ctx context.Context, tx *gorm.DB, testID string) (*TestAttemptStats, error)
}

// CatalogRepository is the engine's read-only view of the content catalog.
type CatalogRepository interface {
	// ResolveQuestions fetches full definitions for the given ids in one
	// batch. Missing ids are silently absent from the result; callers
	// treat dangling references as skipped.
	ResolveQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*models.Question, error)

	// ExistAll reports whether every id resolves, returning the missing
	// ids for error reporting.
	ExistAll(ctx context.Context, tx *gorm.DB, questionIDs []string) (bool, []string, error)
}

// AnalyticsRepository appends immutable evaluated-session fact rows.
type AnalyticsRepository interface {
	Create(ctx context.Context, tx *gorm.DB, row *models.TestAnalytics) error
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.TestAnalytics, error)
	List(ctx context.Context, tx *gorm.DB, filters AnalyticsFilters) ([]*models.TestAnalytics, int64, error)
}
