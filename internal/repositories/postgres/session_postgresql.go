package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prepnest/exam-engine/internal/cache"
	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSessionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SessionRepository {
	return &SessionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(session).Error
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error) {
	db := s.getDB(tx)

	cacheKey := fmt.Sprintf("id:%s", id)
	var session models.ExamSession

	err := s.cacheManager.Session.CacheOrExecute(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL, func() (interface{}, error) {
		var dbSession models.ExamSession
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbSession).Error; err != nil {
			return nil, err
		}
		return &dbSession, nil
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// GetByIDForUpdate skips the cache entirely; the async cache populate can
// race an invalidation, and mutating paths must not act on that window.
func (s *SessionPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error) {
	db := s.getDB(tx)

	var session models.ExamSession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(session).Error; err != nil {
		return err
	}
	s.cacheManager.InvalidateSession(ctx, session.ID, session.TestID)
	return nil
}

func (s *SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	db := s.getDB(tx)
	var sessions []*models.ExamSession
	var total int64

	query := db.WithContext(ctx).Model(&models.ExamSession{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Newest first; listing is a history view.
	query = query.Order("created_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (s *SessionPostgreSQL) GetActiveSession(ctx context.Context, tx *gorm.DB, userID, testID string) (*models.ExamSession, error) {
	db := s.getDB(tx)
	var session models.ExamSession
	err := db.WithContext(ctx).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, models.SessionInProgress).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) CountByUserAndTest(ctx context.Context, tx *gorm.DB, userID, testID string) (int, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Count(&count).Error
	return int(count), err
}

// MarkEvaluated performs the terminal transition with a conditional
// update: only a session not yet evaluated or cancelled transitions, so a
// concurrent submit cannot re-evaluate. The session struct must already
// carry the computed aggregates and snapshot.
func (s *SessionPostgreSQL) MarkEvaluated(ctx context.Context, tx *gorm.DB, session *models.ExamSession) (bool, error) {
	db := s.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ? AND status IN ?", session.ID, []models.SessionStatus{models.SessionInProgress, models.SessionSubmitted}).
		Updates(map[string]interface{}{
			"status":              models.SessionEvaluated,
			"responses":           session.Responses,
			"correct_count":       session.CorrectCount,
			"wrong_count":         session.WrongCount,
			"skipped_count":       session.SkippedCount,
			"total_marks":         session.TotalMarks,
			"negative_marks":      session.NegativeMarks,
			"accuracy":            session.Accuracy,
			"subject_stats":       session.SubjectStats,
			"evaluation_snapshot": session.EvaluationSnapshot,
			"is_analysis_visible": session.IsAnalysisVisible,
			"submitted_at":        session.SubmittedAt,
			"time_spent":          session.TimeSpent,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	s.cacheManager.InvalidateSession(ctx, session.ID, session.TestID)

	return result.RowsAffected > 0, nil
}

func (s *SessionPostgreSQL) GetStatsByTest(ctx context.Context, tx *gorm.DB, testID string) (*repositories.TestAttemptStats, error) {
	db := s.getDB(tx)

	cacheKey := fmt.Sprintf("test:%s", testID)
	var stats repositories.TestAttemptStats

	err := s.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		computed := &repositories.TestAttemptStats{
			StatusBreakdown: make(map[models.SessionStatus]int),
		}

		var rows []struct {
			Status models.SessionStatus
			Count  int
		}
		if err := db.WithContext(ctx).
			Model(&models.ExamSession{}).
			Select("status, count(*) as count").
			Where("test_id = ?", testID).
			Group("status").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			computed.StatusBreakdown[row.Status] = row.Count
			computed.TotalSessions += row.Count
		}

		var agg struct {
			AvgMarks     float64
			AvgAccuracy  float64
			MaxMarks     float64
			AvgTimeSpent float64
			Evaluated    int
		}
		if err := db.WithContext(ctx).
			Model(&models.ExamSession{}).
			Select("coalesce(avg(total_marks),0) as avg_marks, coalesce(avg(accuracy),0) as avg_accuracy, coalesce(max(total_marks),0) as max_marks, coalesce(avg(time_spent),0) as avg_time_spent, count(*) as evaluated").
			Where("test_id = ? AND status = ?", testID, models.SessionEvaluated).
			Scan(&agg).Error; err != nil {
			return nil, err
		}

		computed.AverageMarks = agg.AvgMarks
		computed.AverageAccuracy = agg.AvgAccuracy
		computed.HighestMarks = agg.MaxMarks
		computed.AverageTimeSpent = int(agg.AvgTimeSpent)
		computed.EvaluatedSessions = agg.Evaluated

		return computed, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.SeriesID != nil {
		query = query.Where("series_id = ?", *filters.SeriesID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
