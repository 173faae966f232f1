package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepnest/exam-engine/internal/events"
	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/validator"
	"gorm.io/gorm"
)

type sessionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	analytics AnalyticsService
}

func NewSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, analytics AnalyticsService) SessionService {
	return &sessionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		analytics: analytics,
	}
}

// ===== CREATE =====

func (s *sessionService) Create(ctx context.Context, req *CreateSessionRequest, userID string) (*SessionResponse, error) {
	s.logger.Info("Creating exam session",
		"test_id", req.TestID,
		"user_id", userID)

	if errs := s.validator.ValidateSessionCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	test, err := s.repo.Test().GetByTestID(ctx, nil, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	// Idempotency: an existing active session for the pair is returned
	// instead of creating a duplicate.
	if existing, err := s.repo.Session().GetActiveSession(ctx, nil, userID, req.TestID); err == nil {
		s.logger.Info("Returning existing active session",
			"session_id", existing.ID,
			"user_id", userID)
		return s.toResponse(existing, test, true), nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	attemptCount, err := s.repo.Session().CountByUserAndTest(ctx, nil, userID, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if test.MaxAttempt > 0 && attemptCount >= test.MaxAttempt {
		return nil, ErrAttemptLimitReached
	}

	order, seed, err := s.resolveQuestionOrder(test, req)
	if err != nil {
		return nil, err
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question order: %w", err)
	}

	now := time.Now()
	session := &models.ExamSession{
		ID:            uuid.New().String(),
		UserID:        userID,
		TestID:        req.TestID,
		SeriesID:      req.SeriesID,
		AttemptNumber: attemptCount + 1,
		QuestionOrder: orderJSON,
		RandomSeed:    seed,
		Responses:     []byte("{}"),
		StartedAt:     now,
		LastSeenAt:    now,
		Status:        models.SessionInProgress,
	}
	if len(req.Meta) > 0 {
		meta, err := json.Marshal(req.Meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		session.Meta = meta
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		// Two concurrent creates race past the lookup; the partial unique
		// index rejects the loser, who then returns the winner's session.
		if repositories.IsDuplicateKeyError(err) {
			winner, lookupErr := s.repo.Session().GetActiveSession(ctx, nil, userID, req.TestID)
			if lookupErr != nil {
				return nil, fmt.Errorf("failed to recover concurrent session: %w", lookupErr)
			}
			return s.toResponse(winner, test, true), nil
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:     session.ID,
		UserID:        userID,
		TestID:        req.TestID,
		AttemptNumber: session.AttemptNumber,
	}))

	s.logger.Info("Exam session created",
		"session_id", session.ID,
		"attempt_number", session.AttemptNumber)

	return s.toResponse(session, test, false), nil
}

// resolveQuestionOrder applies a caller-supplied order verbatim after
// vetting it against the pool, otherwise runs the generator.
func (s *sessionService) resolveQuestionOrder(test *models.TestDefinition, req *CreateSessionRequest) ([]string, string, error) {
	var pool []string
	if len(test.QuestionPool) > 0 {
		if err := json.Unmarshal(test.QuestionPool, &pool); err != nil {
			return nil, "", fmt.Errorf("failed to decode question pool: %w", err)
		}
	}

	if len(req.QuestionOrder) > 0 {
		if !isPermutationOf(req.QuestionOrder, pool) {
			return nil, "", NewValidationError(validator.ValidationErrors{{
				Field:   "question_order",
				Message: "must be a permutation of the test's question pool",
				Rule:    "business_logic",
			}})
		}
		seed := req.RandomSeed
		if seed == "" {
			seed = uuid.New().String()
		}
		return req.QuestionOrder, seed, nil
	}

	order, seed := GenerateQuestionOrder(pool, test.AllowRandomize, req.RandomSeed)
	return order, seed, nil
}

// ===== READ =====

func (s *sessionService) GetByID(ctx context.Context, id string, userID string) (*SessionResponse, error) {
	session, err := s.getOwnedSession(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return s.toResponseWithTest(ctx, session, false), nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters, userID string) (*SessionListResponse, error) {
	filters.UserID = &userID
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	sessions, total, err := s.repo.Session().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := make([]*SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = s.toResponseWithTest(ctx, session, false)
	}

	return &SessionListResponse{
		Sessions: responses,
		Total:    total,
		Page:     filters.Offset/filters.Limit + 1,
		Size:     filters.Limit,
	}, nil
}

// ===== UPDATE =====

func (s *sessionService) Update(ctx context.Context, id string, req *UpdateSessionRequest, userID string) (*SessionResponse, error) {
	if errs := s.validator.ValidateSessionUpdate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	session, err := s.getOwnedSessionForUpdate(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	// Whole-document replacement of the response set: the incoming map
	// supersedes what is stored, unrelated session fields stay untouched.
	if req.Responses != nil {
		responses := make(map[string]models.SessionResponse, len(req.Responses))
		for questionID, update := range req.Responses {
			responses[questionID] = models.SessionResponse{
				SelectedIDs: update.SelectedIDs,
				Answer:      update.Answer,
				TimeSpent:   update.TimeSpent,
				Order:       update.Order,
				Flagged:     update.Flagged,
				Meta:        update.Meta,
			}
		}
		encoded, err := json.Marshal(responses)
		if err != nil {
			return nil, fmt.Errorf("failed to encode responses: %w", err)
		}
		session.Responses = encoded
	}

	if req.TimeSpent != nil {
		session.TimeSpent = *req.TimeSpent
	}

	if req.LastSeenAt != nil {
		session.LastSeenAt = *req.LastSeenAt
	} else {
		session.LastSeenAt = time.Now()
	}

	// Client-set markers. The submitted marker freezes the session until
	// the dedicated submit operation scores it; no evaluation happens here.
	cancelled := false
	if req.Status != nil {
		switch *req.Status {
		case string(models.SessionCancelled):
			session.Status = models.SessionCancelled
			cancelled = true
		case string(models.SessionSubmitted):
			session.Status = models.SessionSubmitted
		}
	}

	if err := s.repo.Session().Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if cancelled {
		s.publishEvent(ctx, events.NewEvent(events.EventSessionCancelled, events.SessionCancelledEvent{
			SessionID:     session.ID,
			UserID:        userID,
			TestID:        session.TestID,
			AttemptNumber: session.AttemptNumber,
		}))
	}

	return s.toResponseWithTest(ctx, session, false), nil
}

// ===== SUBMIT =====

func (s *sessionService) Submit(ctx context.Context, id string, userID string) (*SessionResponse, error) {
	s.logger.Info("Submitting exam session",
		"session_id", id,
		"user_id", userID)

	session, err := s.getOwnedSessionForUpdate(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	// The client-set submitted marker is still submittable; evaluated and
	// cancelled sessions are not.
	if session.Status != models.SessionInProgress && session.Status != models.SessionSubmitted {
		return nil, ErrSessionAlreadyEvaluated
	}

	order := session.DecodeQuestionOrder()
	responses := session.DecodeResponses()

	// One batch resolve; ids that no longer exist are simply absent and
	// their responses degrade to skipped during scoring.
	resolved, err := s.repo.Catalog().ResolveQuestions(ctx, nil, order)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve questions: %w", err)
	}
	questions := make(map[string]*models.Question, len(resolved))
	for _, question := range resolved {
		questions[question.QuestionID] = question
	}

	result := EvaluateSession(order, responses, questions)

	if err := s.applyEvaluation(session, result); err != nil {
		return nil, err
	}

	transitioned, err := s.repo.Session().MarkEvaluated(ctx, nil, session)
	if err != nil {
		return nil, fmt.Errorf("failed to persist evaluation: %w", err)
	}
	if !transitioned {
		// A concurrent submit won the conditional transition.
		return nil, ErrSessionAlreadyEvaluated
	}

	// Best-effort secondary write: the authoritative score already lives
	// on the session, so an analytics failure is logged and swallowed.
	if _, err := s.analytics.Record(ctx, session); err != nil {
		s.logger.Error("Failed to record analytics snapshot",
			"session_id", session.ID,
			"error", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventSessionEvaluated, events.SessionEvaluatedEvent{
		SessionID:     session.ID,
		UserID:        session.UserID,
		TestID:        session.TestID,
		AttemptNumber: session.AttemptNumber,
		TotalMarks:    session.TotalMarks,
		Accuracy:      session.Accuracy,
		CorrectCount:  session.CorrectCount,
		WrongCount:    session.WrongCount,
		SkippedCount:  session.SkippedCount,
	}))

	s.logger.Info("Exam session evaluated",
		"session_id", session.ID,
		"total_marks", session.TotalMarks,
		"accuracy", session.Accuracy)

	return s.toResponseWithTest(ctx, session, false), nil
}

// applyEvaluation writes the scoring output onto the session document
func (s *sessionService) applyEvaluation(session *models.ExamSession, result EvaluationResult) error {
	scored, err := json.Marshal(result.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode scored responses: %w", err)
	}
	subjectStats, err := json.Marshal(result.SubjectStats)
	if err != nil {
		return fmt.Errorf("failed to encode subject stats: %w", err)
	}
	snapshot, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation snapshot: %w", err)
	}

	now := time.Now()
	session.Responses = scored
	session.CorrectCount = result.Correct
	session.WrongCount = result.Wrong
	session.SkippedCount = result.Skipped
	session.TotalMarks = result.TotalMarks
	session.NegativeMarks = DeriveNegativeMarks(result.TotalMarks)
	session.Accuracy = result.Accuracy
	session.SubjectStats = subjectStats
	session.EvaluationSnapshot = snapshot
	session.IsAnalysisVisible = true
	session.SubmittedAt = &now
	session.Status = models.SessionEvaluated

	return nil
}

// ===== HELPERS =====

// getOwnedSession loads a session and hides other users' sessions behind
// not-found, so ids cannot be probed across accounts.
func (s *sessionService) getOwnedSession(ctx context.Context, id string, userID string) (*models.ExamSession, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, id)
	return s.checkOwnership(session, err, userID)
}

// getOwnedSessionForUpdate is the mutating-path variant: it reads past the
// session cache so update and submit never act on a stale document.
func (s *sessionService) getOwnedSessionForUpdate(ctx context.Context, id string, userID string) (*models.ExamSession, error) {
	session, err := s.repo.Session().GetByIDForUpdate(ctx, nil, id)
	return s.checkOwnership(session, err, userID)
}

func (s *sessionService) checkOwnership(session *models.ExamSession, err error, userID string) (*models.ExamSession, error) {
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) toResponse(session *models.ExamSession, test *models.TestDefinition, resumed bool) *SessionResponse {
	response := &SessionResponse{
		ExamSession: session,
		Resumed:     resumed,
	}
	if test != nil {
		response.TimeAllotted = test.TimeAllotted
	}
	return response
}

// toResponseWithTest enriches the response with the definition's time
// limit; the definition read is cache-backed so this stays cheap.
func (s *sessionService) toResponseWithTest(ctx context.Context, session *models.ExamSession, resumed bool) *SessionResponse {
	test, err := s.repo.Test().GetByTestID(ctx, nil, session.TestID)
	if err != nil {
		s.logger.Warn("Failed to resolve test for session response",
			"session_id", session.ID,
			"test_id", session.TestID,
			"error", err)
		return s.toResponse(session, nil, resumed)
	}
	return s.toResponse(session, test, resumed)
}

func (s *sessionService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}
