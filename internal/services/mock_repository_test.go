package services

import (
	"context"
	"sort"
	"sync"

	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"gorm.io/gorm"
)

// mockRepository is an in-memory Repository for service tests. It mirrors
// the store's guarantees: unique test ids, the partial unique index on
// active sessions, and the conditional evaluated transition.
type mockRepository struct {
	mu        sync.Mutex
	tests     map[string]*models.TestDefinition
	sessions  map[string]*models.ExamSession
	questions map[string]*models.Question
	analytics map[string]*models.TestAnalytics

	// suppressActiveLookups makes the next N GetActiveSession calls miss,
	// so tests can drive the duplicate-key recovery path two racing
	// creates would take.
	suppressActiveLookups int

	// beforeMarkEvaluated runs at the top of MarkEvaluated with the lock
	// held, so tests can interleave a concurrent status change.
	beforeMarkEvaluated func()

	// forUpdateReads counts cache-bypassing session reads.
	forUpdateReads int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		tests:     make(map[string]*models.TestDefinition),
		sessions:  make(map[string]*models.ExamSession),
		questions: make(map[string]*models.Question),
		analytics: make(map[string]*models.TestAnalytics),
	}
}

func (m *mockRepository) Test() repositories.TestRepository           { return &mockTestRepo{m} }
func (m *mockRepository) Session() repositories.SessionRepository     { return &mockSessionRepo{m} }
func (m *mockRepository) Catalog() repositories.CatalogRepository     { return &mockCatalogRepo{m} }
func (m *mockRepository) Analytics() repositories.AnalyticsRepository { return &mockAnalyticsRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func (m *mockRepository) addQuestion(q *models.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.QuestionID] = q
}

// ===== TEST REPO =====

type mockTestRepo struct{ parent *mockRepository }

func (r *mockTestRepo) Create(ctx context.Context, tx *gorm.DB, test *models.TestDefinition) error {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	if _, exists := r.parent.tests[test.TestID]; exists {
		return gorm.ErrDuplicatedKey
	}
	r.parent.tests[test.TestID] = test
	return nil
}

func (r *mockTestRepo) GetByTestID(ctx context.Context, tx *gorm.DB, testID string) (*models.TestDefinition, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	test, exists := r.parent.tests[testID]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *test
	return &cp, nil
}

func (r *mockTestRepo) ExistsByTestID(ctx context.Context, tx *gorm.DB, testID string) (bool, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	_, exists := r.parent.tests[testID]
	return exists, nil
}

func (r *mockTestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.TestDefinition, int64, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	var out []*models.TestDefinition
	for _, test := range r.parent.tests {
		if filters.CreatedBy != nil && test.CreatedBy != *filters.CreatedBy {
			continue
		}
		cp := *test
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestID < out[j].TestID })
	return out, int64(len(out)), nil
}

// ===== SESSION REPO =====

type mockSessionRepo struct{ parent *mockRepository }

func (r *mockSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	for _, existing := range r.parent.sessions {
		if existing.UserID == session.UserID && existing.TestID == session.TestID &&
			existing.Status == models.SessionInProgress {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *session
	r.parent.sessions[session.ID] = &cp
	return nil
}

func (r *mockSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	session, exists := r.parent.sessions[id]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *mockSessionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error) {
	r.parent.mu.Lock()
	r.parent.forUpdateReads++
	r.parent.mu.Unlock()
	return r.GetByID(ctx, tx, id)
}

func (r *mockSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	if _, exists := r.parent.sessions[session.ID]; !exists {
		return gorm.ErrRecordNotFound
	}
	cp := *session
	r.parent.sessions[session.ID] = &cp
	return nil
}

func (r *mockSessionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	var out []*models.ExamSession
	for _, session := range r.parent.sessions {
		if filters.UserID != nil && session.UserID != *filters.UserID {
			continue
		}
		if filters.TestID != nil && session.TestID != *filters.TestID {
			continue
		}
		if filters.Status != nil && session.Status != *filters.Status {
			continue
		}
		cp := *session
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *mockSessionRepo) GetActiveSession(ctx context.Context, tx *gorm.DB, userID, testID string) (*models.ExamSession, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	if r.parent.suppressActiveLookups > 0 {
		r.parent.suppressActiveLookups--
		return nil, gorm.ErrRecordNotFound
	}
	for _, session := range r.parent.sessions {
		if session.UserID == userID && session.TestID == testID &&
			session.Status == models.SessionInProgress {
			cp := *session
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSessionRepo) CountByUserAndTest(ctx context.Context, tx *gorm.DB, userID, testID string) (int, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	count := 0
	for _, session := range r.parent.sessions {
		if session.UserID == userID && session.TestID == testID {
			count++
		}
	}
	return count, nil
}

func (r *mockSessionRepo) MarkEvaluated(ctx context.Context, tx *gorm.DB, session *models.ExamSession) (bool, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	if r.parent.beforeMarkEvaluated != nil {
		r.parent.beforeMarkEvaluated()
	}
	stored, exists := r.parent.sessions[session.ID]
	if !exists || (stored.Status != models.SessionInProgress && stored.Status != models.SessionSubmitted) {
		return false, nil
	}
	cp := *session
	cp.Status = models.SessionEvaluated
	r.parent.sessions[session.ID] = &cp
	return true, nil
}

func (r *mockSessionRepo) GetStatsByTest(ctx context.Context, tx *gorm.DB, testID string) (*repositories.TestAttemptStats, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	stats := &repositories.TestAttemptStats{
		StatusBreakdown: make(map[models.SessionStatus]int),
	}
	for _, session := range r.parent.sessions {
		if session.TestID != testID {
			continue
		}
		stats.TotalSessions++
		stats.StatusBreakdown[session.Status]++
		if session.Status == models.SessionEvaluated {
			stats.EvaluatedSessions++
		}
	}
	return stats, nil
}

// ===== CATALOG REPO =====

type mockCatalogRepo struct{ parent *mockRepository }

func (r *mockCatalogRepo) ResolveQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*models.Question, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	var out []*models.Question
	for _, id := range questionIDs {
		if question, exists := r.parent.questions[id]; exists {
			cp := *question
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *mockCatalogRepo) ExistAll(ctx context.Context, tx *gorm.DB, questionIDs []string) (bool, []string, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	var missing []string
	for _, id := range questionIDs {
		if _, exists := r.parent.questions[id]; !exists {
			missing = append(missing, id)
		}
	}
	return len(missing) == 0, missing, nil
}

// ===== ANALYTICS REPO =====

type mockAnalyticsRepo struct{ parent *mockRepository }

func (r *mockAnalyticsRepo) Create(ctx context.Context, tx *gorm.DB, row *models.TestAnalytics) error {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	if _, exists := r.parent.analytics[row.SessionID]; exists {
		return gorm.ErrDuplicatedKey
	}
	cp := *row
	r.parent.analytics[row.SessionID] = &cp
	return nil
}

func (r *mockAnalyticsRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.TestAnalytics, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	row, exists := r.parent.analytics[sessionID]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *mockAnalyticsRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AnalyticsFilters) ([]*models.TestAnalytics, int64, error) {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	var out []*models.TestAnalytics
	for _, row := range r.parent.analytics {
		if filters.TestID != nil && row.TestID != *filters.TestID {
			continue
		}
		if filters.UserID != nil && row.UserID != *filters.UserID {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, int64(len(out)), nil
}
