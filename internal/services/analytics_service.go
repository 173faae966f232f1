package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type analyticsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Record appends the immutable fact row for an evaluated session. Callers
// treat failures as best-effort; the session itself stays evaluated.
func (s *analyticsService) Record(ctx context.Context, session *models.ExamSession) (*models.TestAnalytics, error) {
	if session.Status != models.SessionEvaluated {
		return nil, fmt.Errorf("cannot record analytics for session in status %s", session.Status)
	}

	evaluatedAt := time.Now()
	if session.SubmittedAt != nil {
		evaluatedAt = *session.SubmittedAt
	}

	row := &models.TestAnalytics{
		SessionID:        session.ID,
		UserID:           session.UserID,
		TestID:           session.TestID,
		AttemptNumber:    session.AttemptNumber,
		TotalMarks:       session.TotalMarks,
		NegativeMarks:    session.NegativeMarks,
		CorrectCount:     session.CorrectCount,
		WrongCount:       session.WrongCount,
		SkippedCount:     session.SkippedCount,
		Accuracy:         session.Accuracy,
		SubjectBreakdown: session.SubjectStats,
		EvaluatedAt:      evaluatedAt,
	}

	if err := s.repo.Analytics().Create(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("failed to create analytics row: %w", err)
	}

	return row, nil
}

func (s *analyticsService) GetBySession(ctx context.Context, sessionID string, userID string) (*AnalyticsResponse, error) {
	row, err := s.repo.Analytics().GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}

	if row.UserID != userID {
		return nil, ErrSessionNotFound
	}

	return &AnalyticsResponse{TestAnalytics: row}, nil
}

func (s *analyticsService) ListByTest(ctx context.Context, testID string, filters repositories.AnalyticsFilters) ([]*AnalyticsResponse, int64, error) {
	filters.TestID = &testID
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 100
	}

	rows, total, err := s.repo.Analytics().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analytics: %w", err)
	}

	responses := make([]*AnalyticsResponse, len(rows))
	for i, row := range rows {
		responses[i] = &AnalyticsResponse{TestAnalytics: row}
	}

	return responses, total, nil
}

var exportHeaders = []string{
	"Session ID", "User ID", "Attempt", "Total Marks", "Negative Marks",
	"Correct", "Wrong", "Skipped", "Accuracy (%)", "Evaluated At",
}

// ExportResults builds an xlsx workbook of every evaluated attempt for a
// test, one row per analytics record.
func (s *analyticsService) ExportResults(ctx context.Context, testID string) (*excelize.File, error) {
	if _, err := s.repo.Test().GetByTestID(ctx, nil, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	rows, _, err := s.repo.Analytics().List(ctx, nil, repositories.AnalyticsFilters{
		TestID: &testID,
		Limit:  10000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics rows: %w", err)
	}

	file := excelize.NewFile()
	const sheet = "Results"
	index, err := file.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.SessionID,
			row.UserID,
			row.AttemptNumber,
			row.TotalMarks,
			row.NegativeMarks,
			row.CorrectCount,
			row.WrongCount,
			row.SkippedCount,
			row.Accuracy,
			row.EvaluatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	s.logger.Info("Exported test results",
		"test_id", testID,
		"rows", len(rows))

	return file, nil
}
