package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prepnest/exam-engine/internal/events"
	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/validator"
	"gorm.io/gorm"
)

type testService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewTestService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) TestService {
	return &testService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*TestResponse, error) {
	s.logger.Info("Creating test definition",
		"test_id", req.TestID,
		"creator_id", creatorID)

	if errs := s.validator.ValidateTestCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	exists, err := s.repo.Test().ExistsByTestID(ctx, nil, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check test existence: %w", err)
	}
	if exists {
		return nil, ErrTestAlreadyExists
	}

	// Pool references must resolve in the catalog before the definition
	// can be published.
	allExist, missing, err := s.repo.Catalog().ExistAll(ctx, nil, req.QuestionPool)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve question pool: %w", err)
	}
	if !allExist {
		return nil, fmt.Errorf("%w: %v", ErrQuestionsNotFound, missing)
	}

	pool, err := json.Marshal(req.QuestionPool)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question pool: %w", err)
	}

	test := &models.TestDefinition{
		TestID:         req.TestID,
		Title:          req.Title,
		Description:    req.Description,
		TimeAllotted:   req.TimeAllotted,
		Marks:          req.Marks,
		MaxNegMarks:    req.MaxNegMarks,
		QuestionPool:   pool,
		AllowRandomize: req.AllowRandomize,
		MaxAttempt:     req.MaxAttempt,
		CreatedBy:      creatorID,
	}
	if test.MaxAttempt < 1 {
		test.MaxAttempt = 1
	}
	if len(req.Languages) > 0 {
		languages, err := json.Marshal(req.Languages)
		if err != nil {
			return nil, fmt.Errorf("failed to encode languages: %w", err)
		}
		test.Languages = languages
	}

	if err := s.repo.Test().Create(ctx, nil, test); err != nil {
		// A concurrent create can still slip past the existence check;
		// the unique index is authoritative.
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrTestAlreadyExists
		}
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTestCreated, events.TestCreatedEvent{
		TestID:        test.TestID,
		Title:         test.Title,
		CreatedBy:     creatorID,
		QuestionCount: len(req.QuestionPool),
	}))

	s.logger.Info("Test definition created",
		"test_id", test.TestID,
		"question_count", len(req.QuestionPool))

	return s.toResponse(test), nil
}

func (s *testService) GetByTestID(ctx context.Context, testID string) (*TestResponse, error) {
	test, err := s.repo.Test().GetByTestID(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	return s.toResponse(test), nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) (*TestListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	tests, total, err := s.repo.Test().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	responses := make([]*TestResponse, len(tests))
	for i, test := range tests {
		responses[i] = s.toResponse(test)
	}

	return &TestListResponse{
		Tests: responses,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

func (s *testService) GetStats(ctx context.Context, testID string) (*repositories.TestAttemptStats, error) {
	if _, err := s.GetByTestID(ctx, testID); err != nil {
		return nil, err
	}

	stats, err := s.repo.Session().GetStatsByTest(ctx, nil, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test stats: %w", err)
	}

	return stats, nil
}

func (s *testService) toResponse(test *models.TestDefinition) *TestResponse {
	var pool []string
	if len(test.QuestionPool) > 0 {
		_ = json.Unmarshal(test.QuestionPool, &pool)
	}
	return &TestResponse{
		TestDefinition: test,
		QuestionCount:  len(pool),
	}
}

func (s *testService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}
