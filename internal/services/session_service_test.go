package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/prepnest/exam-engine/internal/events"
	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/validator"
	"github.com/xuri/excelize/v2"
)

type sessionServiceFixture struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	analytics AnalyticsService
	service   SessionService
}

func newSessionServiceFixture(t *testing.T) *sessionServiceFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	analytics := NewAnalyticsService(repo, nil, logger)
	service := NewSessionService(repo, nil, logger, validator.New(), publisher, analytics)

	return &sessionServiceFixture{
		repo:      repo,
		publisher: publisher,
		analytics: analytics,
		service:   service,
	}
}

// seedTest installs a three-question MCQ test with marks 4 / neg 1 and the
// correct answers B, B, B.
func (f *sessionServiceFixture) seedTest(t *testing.T, testID string, maxAttempt int, allowRandomize bool) {
	t.Helper()

	pool := []string{"q1", "q2", "q3"}
	poolJSON, _ := json.Marshal(pool)
	test := &models.TestDefinition{
		TestID:         testID,
		Title:          "Sample Mock Test",
		TimeAllotted:   3600,
		Marks:          4,
		MaxNegMarks:    1,
		QuestionPool:   poolJSON,
		AllowRandomize: allowRandomize,
		MaxAttempt:     maxAttempt,
	}
	if err := f.repo.Test().Create(context.Background(), nil, test); err != nil {
		t.Fatalf("seed test: %v", err)
	}

	subject := "phy"
	for _, id := range pool {
		q := makeQuestion(id, models.KindMCQ, models.CorrectSpec{OptionIDs: []string{"B"}}, 4, 1, subject)
		f.repo.addQuestion(q)
	}
}

func TestSessionService_CreateIsIdempotent(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	first, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Resumed {
		t.Error("first create marked resumed")
	}
	if first.AttemptNumber != 1 {
		t.Errorf("AttemptNumber = %d, want 1", first.AttemptNumber)
	}
	if first.TimeAllotted != 3600 {
		t.Errorf("TimeAllotted = %d, want 3600", first.TimeAllotted)
	}

	second, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second create returned new session %s, want %s", second.ID, first.ID)
	}
	if !second.Resumed {
		t.Error("second create not marked resumed")
	}

	// Only one started event for the pair.
	started := 0
	for _, event := range f.publisher.GetPublishedEvents() {
		if event.Type == events.EventSessionStarted {
			started++
		}
	}
	if started != 1 {
		t.Errorf("session.started events = %d, want 1", started)
	}
}

func TestSessionService_CreateSeparateUsersGetSeparateSessions(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	a, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-a")
	if err != nil {
		t.Fatalf("create for user-a: %v", err)
	}
	b, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-b")
	if err != nil {
		t.Fatalf("create for user-b: %v", err)
	}
	if a.ID == b.ID {
		t.Error("different users shared a session")
	}
}

func TestSessionService_CreateUnknownTest(t *testing.T) {
	f := newSessionServiceFixture(t)

	_, err := f.service.Create(context.Background(), &CreateSessionRequest{TestID: "missing"}, "user-1")
	if !errors.Is(err, ErrTestNotFound) {
		t.Errorf("err = %v, want ErrTestNotFound", err)
	}
}

func TestSessionService_AttemptLimit(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 2, false)
	ctx := context.Background()

	for attempt := 1; attempt <= 2; attempt++ {
		created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
		if err != nil {
			t.Fatalf("attempt %d create: %v", attempt, err)
		}
		if created.AttemptNumber != attempt {
			t.Errorf("AttemptNumber = %d, want %d", created.AttemptNumber, attempt)
		}
		if _, err := f.service.Submit(ctx, created.ID, "user-1"); err != nil {
			t.Fatalf("attempt %d submit: %v", attempt, err)
		}
	}

	_, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if !errors.Is(err, ErrAttemptLimitReached) {
		t.Errorf("err = %v, want ErrAttemptLimitReached", err)
	}
}

func TestSessionService_ExplicitOrderMustBePermutation(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)

	_, err := f.service.Create(context.Background(), &CreateSessionRequest{
		TestID:        "test-1",
		QuestionOrder: []string{"q1", "q1", "q3"},
	}, "user-1")
	if !IsValidationError(err) {
		t.Errorf("err = %v, want validation error", err)
	}

	created, err := f.service.Create(context.Background(), &CreateSessionRequest{
		TestID:        "test-1",
		QuestionOrder: []string{"q3", "q1", "q2"},
	}, "user-1")
	if err != nil {
		t.Fatalf("create with valid order: %v", err)
	}
	order := created.DecodeQuestionOrder()
	want := []string{"q3", "q1", "q2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSessionService_UpdateReplacesResponses(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{
			"q1": {SelectedIDs: []string{"B"}},
			"q2": {SelectedIDs: []string{"A"}},
		},
	}, "user-1")
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	// The second document replaces the first wholesale; q2 disappears.
	timeSpent := 120
	updated, err := f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{
			"q1": {SelectedIDs: []string{"C"}},
		},
		TimeSpent: &timeSpent,
	}, "user-1")
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	responses := updated.DecodeResponses()
	if len(responses) != 1 {
		t.Fatalf("responses = %d entries, want 1", len(responses))
	}
	if got := responses["q1"].SelectedIDs; len(got) != 1 || got[0] != "C" {
		t.Errorf("q1 = %v, want [C]", got)
	}
	if updated.TimeSpent != 120 {
		t.Errorf("TimeSpent = %d, want 120", updated.TimeSpent)
	}
	if !updated.LastSeenAt.After(created.LastSeenAt) && !updated.LastSeenAt.Equal(created.LastSeenAt) {
		t.Error("LastSeenAt not refreshed")
	}
}

func TestSessionService_UpdateHeartbeatOnly(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{"q1": {SelectedIDs: []string{"B"}}},
	}, "user-1")
	if err != nil {
		t.Fatalf("update with responses: %v", err)
	}

	// Empty update is a pure heartbeat: responses stay.
	updated, err := f.service.Update(ctx, created.ID, &UpdateSessionRequest{}, "user-1")
	if err != nil {
		t.Fatalf("heartbeat update: %v", err)
	}
	if len(updated.DecodeResponses()) != 1 {
		t.Error("heartbeat wiped responses")
	}
}

func TestSessionService_UpdateOwnershipAndState(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Other users cannot see the session at all.
	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{}, "user-2")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign update err = %v, want ErrSessionNotFound", err)
	}

	if _, err := f.service.Submit(ctx, created.ID, "user-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{}, "user-1")
	if !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("post-submit update err = %v, want ErrSessionNotActive", err)
	}
}

func TestSessionService_Cancel(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := string(models.SessionCancelled)
	cancelled, err := f.service.Update(ctx, created.ID, &UpdateSessionRequest{Status: &status}, "user-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.SessionCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}

	// Cancelling frees the active slot: a new session can start.
	next, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
	if next.ID == created.ID {
		t.Error("create after cancel returned the cancelled session")
	}
	if next.AttemptNumber != 2 {
		t.Errorf("AttemptNumber = %d, want 2", next.AttemptNumber)
	}

	found := false
	for _, event := range f.publisher.GetPublishedEvents() {
		if event.Type == events.EventSessionCancelled {
			found = true
			payload, ok := event.Data.(events.SessionCancelledEvent)
			if !ok {
				t.Fatalf("payload type = %T, want SessionCancelledEvent", event.Data)
			}
			if payload.SessionID != created.ID {
				t.Errorf("payload SessionID = %s, want %s", payload.SessionID, created.ID)
			}
		}
	}
	if !found {
		t.Error("no session.cancelled event published")
	}
}

func TestSessionService_SubmitEndToEnd(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two correct answers, one wrong, nothing skipped by omission in the
	// response map (q3 answered wrong).
	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{
			"q1": {SelectedIDs: []string{"B"}},
			"q2": {SelectedIDs: []string{"B"}},
			"q3": {SelectedIDs: []string{"A"}},
		},
	}, "user-1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	submitted, err := f.service.Submit(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if submitted.Status != models.SessionEvaluated {
		t.Errorf("Status = %s, want evaluated", submitted.Status)
	}
	if !floatEquals(submitted.TotalMarks, 7) { // 4 + 4 - 1
		t.Errorf("TotalMarks = %v, want 7", submitted.TotalMarks)
	}
	if submitted.CorrectCount != 2 || submitted.WrongCount != 1 || submitted.SkippedCount != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/1/0",
			submitted.CorrectCount, submitted.WrongCount, submitted.SkippedCount)
	}
	if !floatEquals(submitted.NegativeMarks, 0) {
		t.Errorf("NegativeMarks = %v, want 0", submitted.NegativeMarks)
	}
	wantAccuracy := 2.0 / 3.0 * 100
	if !floatEquals(submitted.Accuracy, wantAccuracy) {
		t.Errorf("Accuracy = %v, want %v", submitted.Accuracy, wantAccuracy)
	}
	if submitted.SubmittedAt == nil {
		t.Error("SubmittedAt not set")
	}
	if !submitted.IsAnalysisVisible {
		t.Error("IsAnalysisVisible not set")
	}
	if len(submitted.EvaluationSnapshot) == 0 {
		t.Error("EvaluationSnapshot empty")
	}

	// Scored responses carry marks per question.
	responses := submitted.DecodeResponses()
	if !floatEquals(responses["q3"].MarksAwarded, -1) {
		t.Errorf("q3 MarksAwarded = %v, want -1", responses["q3"].MarksAwarded)
	}

	// Exactly one analytics row for the session.
	analytics, err := f.analytics.GetBySession(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("get analytics: %v", err)
	}
	if !floatEquals(analytics.TotalMarks, 7) {
		t.Errorf("analytics TotalMarks = %v, want 7", analytics.TotalMarks)
	}
	if analytics.AttemptNumber != 1 {
		t.Errorf("analytics AttemptNumber = %d, want 1", analytics.AttemptNumber)
	}

	// Events: started then evaluated.
	published := f.publisher.GetPublishedEvents()
	var types []string
	for _, event := range published {
		types = append(types, event.Type)
	}
	if len(types) != 2 || types[0] != events.EventSessionStarted || types[1] != events.EventSessionEvaluated {
		t.Errorf("event types = %v, want [%s %s]", types, events.EventSessionStarted, events.EventSessionEvaluated)
	}
}

func TestSessionService_DoubleSubmit(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{"q1": {SelectedIDs: []string{"B"}}},
	}, "user-1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	first, err := f.service.Submit(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err = f.service.Submit(ctx, created.ID, "user-1")
	if !errors.Is(err, ErrSessionAlreadyEvaluated) {
		t.Errorf("second submit err = %v, want ErrSessionAlreadyEvaluated", err)
	}

	// Stored aggregates are untouched by the losing submit.
	reread, err := f.service.GetByID(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if !floatEquals(reread.TotalMarks, first.TotalMarks) {
		t.Errorf("TotalMarks changed: %v -> %v", first.TotalMarks, reread.TotalMarks)
	}
	if string(reread.EvaluationSnapshot) != string(first.EvaluationSnapshot) {
		t.Error("evaluation snapshot changed after losing submit")
	}
}

func TestSessionService_SubmittedMarker(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{"q1": {SelectedIDs: []string{"B"}}},
	}, "user-1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// The submitted marker freezes the session without scoring it.
	status := string(models.SessionSubmitted)
	marked, err := f.service.Update(ctx, created.ID, &UpdateSessionRequest{Status: &status}, "user-1")
	if err != nil {
		t.Fatalf("mark submitted: %v", err)
	}
	if marked.Status != models.SessionSubmitted {
		t.Errorf("Status = %s, want submitted", marked.Status)
	}
	if marked.TotalMarks != 0 || len(marked.EvaluationSnapshot) != 0 {
		t.Error("marker update performed scoring")
	}

	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{}, "user-1")
	if !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("update after marker err = %v, want ErrSessionNotActive", err)
	}

	// Evaluation still runs from the marked state.
	submitted, err := f.service.Submit(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != models.SessionEvaluated {
		t.Errorf("Status = %s, want evaluated", submitted.Status)
	}
	if !floatEquals(submitted.TotalMarks, 4) {
		t.Errorf("TotalMarks = %v, want 4", submitted.TotalMarks)
	}
}

func TestSessionService_CreateDuplicateKeyRecovery(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	// A concurrent create already won and holds the active slot.
	winner := &models.ExamSession{
		ID:            "winner",
		UserID:        "user-1",
		TestID:        "test-1",
		AttemptNumber: 1,
		QuestionOrder: []byte(`["q1","q2","q3"]`),
		Responses:     []byte("{}"),
		Status:        models.SessionInProgress,
	}
	if err := f.repo.Session().Create(ctx, nil, winner); err != nil {
		t.Fatalf("seed winner: %v", err)
	}

	// The loser's pre-insert lookup raced past the winner; its insert
	// hits the unique index and recovery re-fetches the winner.
	f.repo.suppressActiveLookups = 1

	recovered, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if recovered.ID != "winner" {
		t.Errorf("recovered session = %s, want winner", recovered.ID)
	}
	if !recovered.Resumed {
		t.Error("recovered session not marked resumed")
	}

	for _, event := range f.publisher.GetPublishedEvents() {
		if event.Type == events.EventSessionStarted {
			t.Error("losing create published session.started")
		}
	}
}

func TestSessionService_SubmitLosesConditionalTransition(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A concurrent submit flips the stored status between this submit's
	// read and its conditional transition.
	f.repo.beforeMarkEvaluated = func() {
		f.repo.sessions[created.ID].Status = models.SessionEvaluated
		f.repo.beforeMarkEvaluated = nil
	}

	_, err = f.service.Submit(ctx, created.ID, "user-1")
	if !errors.Is(err, ErrSessionAlreadyEvaluated) {
		t.Errorf("err = %v, want ErrSessionAlreadyEvaluated", err)
	}

	// The loser must not write a fact row or publish evaluation.
	if _, err := f.repo.Analytics().GetBySessionID(ctx, nil, created.ID); err == nil {
		t.Error("losing submit recorded analytics")
	}
	for _, event := range f.publisher.GetPublishedEvents() {
		if event.Type == events.EventSessionEvaluated {
			t.Error("losing submit published session.evaluated")
		}
	}
}

func TestSessionService_MutatingPathsBypassSessionCache(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.repo.forUpdateReads != 0 {
		t.Errorf("forUpdateReads after create = %d, want 0", f.repo.forUpdateReads)
	}

	if _, err := f.service.Update(ctx, created.ID, &UpdateSessionRequest{}, "user-1"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.repo.forUpdateReads != 1 {
		t.Errorf("forUpdateReads after update = %d, want 1", f.repo.forUpdateReads)
	}

	if _, err := f.service.Submit(ctx, created.ID, "user-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if f.repo.forUpdateReads != 2 {
		t.Errorf("forUpdateReads after submit = %d, want 2", f.repo.forUpdateReads)
	}

	// Plain reads stay on the cached path.
	if _, err := f.service.GetByID(ctx, created.ID, "user-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if f.repo.forUpdateReads != 2 {
		t.Errorf("forUpdateReads after read = %d, want 2", f.repo.forUpdateReads)
	}
}

func TestSessionService_SubmitUnansweredAreSkipped(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// q2 present but empty, q3 absent from the map entirely. Only the
	// present-but-empty response counts as skipped.
	_, err = f.service.Update(ctx, created.ID, &UpdateSessionRequest{
		Responses: map[string]ResponseUpdate{
			"q1": {SelectedIDs: []string{"B"}},
			"q2": {Flagged: true},
		},
	}, "user-1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	submitted, err := f.service.Submit(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.CorrectCount != 1 || submitted.SkippedCount != 1 {
		t.Errorf("correct/skipped = %d/%d, want 1/1", submitted.CorrectCount, submitted.SkippedCount)
	}
}

func TestSessionService_AnalyticsFailureDoesNotFailSubmit(t *testing.T) {
	f := newSessionServiceFixture(t)
	f.seedTest(t, "test-1", 3, false)
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewSessionService(f.repo, nil, logger, validator.New(), f.publisher, failingAnalytics{})

	created, err := service.Create(ctx, &CreateSessionRequest{TestID: "test-1"}, "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	submitted, err := service.Submit(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != models.SessionEvaluated {
		t.Errorf("Status = %s, want evaluated", submitted.Status)
	}
}

// failingAnalytics rejects every record call to exercise the best-effort path.
type failingAnalytics struct{}

func (failingAnalytics) Record(ctx context.Context, session *models.ExamSession) (*models.TestAnalytics, error) {
	return nil, errors.New("analytics store unavailable")
}

func (failingAnalytics) GetBySession(ctx context.Context, sessionID string, userID string) (*AnalyticsResponse, error) {
	return nil, errors.New("analytics store unavailable")
}

func (failingAnalytics) ListByTest(ctx context.Context, testID string, filters repositories.AnalyticsFilters) ([]*AnalyticsResponse, int64, error) {
	return nil, 0, errors.New("analytics store unavailable")
}

func (failingAnalytics) ExportResults(ctx context.Context, testID string) (*excelize.File, error) {
	return nil, errors.New("analytics store unavailable")
}
