package services

import (
	"context"

	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateTestRequest = validator.TestCreateRequest
type CreateSessionRequest = validator.SessionCreateRequest
type UpdateSessionRequest = validator.SessionUpdateRequest
type ResponseUpdate = validator.SessionResponseUpdate

type TestResponse struct {
	*models.TestDefinition
	QuestionCount int `json:"question_count"`
}

type TestListResponse struct {
	Tests []*TestResponse `json:"tests"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type SessionResponse struct {
	*models.ExamSession

	// TimeAllotted echoes the definition's limit so clients can run the
	// countdown without a second fetch. Enforcement stays client-side.
	TimeAllotted int `json:"time_allotted"`

	// Resumed is true when create returned an existing active session
	// instead of starting a new one.
	Resumed bool `json:"resumed,omitempty"`
}

type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type AnalyticsResponse struct {
	*models.TestAnalytics
}

// ===== SERVICE INTERFACES =====

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*TestResponse, error)
	GetByTestID(ctx context.Context, testID string) (*TestResponse, error)
	List(ctx context.Context, filters repositories.TestFilters) (*TestListResponse, error)
	GetStats(ctx context.Context, testID string) (*repositories.TestAttemptStats, error)
}

type SessionService interface {
	// Create starts a session or returns the caller's existing active one
	// for the same test. At most one active session per (user, test).
	Create(ctx context.Context, req *CreateSessionRequest, userID string) (*SessionResponse, error)

	GetByID(ctx context.Context, id string, userID string) (*SessionResponse, error)
	List(ctx context.Context, filters repositories.SessionFilters, userID string) (*SessionListResponse, error)

	// Update replaces the response document and stamps the heartbeat.
	// Only in_progress sessions accept updates.
	Update(ctx context.Context, id string, req *UpdateSessionRequest, userID string) (*SessionResponse, error)

	// Submit evaluates the session exactly once. A concurrent duplicate
	// submit gets ErrSessionAlreadyEvaluated.
	Submit(ctx context.Context, id string, userID string) (*SessionResponse, error)
}

type AnalyticsService interface {
	Record(ctx context.Context, session *models.ExamSession) (*models.TestAnalytics, error)
	GetBySession(ctx context.Context, sessionID string, userID string) (*AnalyticsResponse, error)
	ListByTest(ctx context.Context, testID string, filters repositories.AnalyticsFilters) ([]*AnalyticsResponse, int64, error)
	ExportResults(ctx context.Context, testID string) (*excelize.File, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Test() TestService
	Session() SessionService
	Analytics() AnalyticsService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
