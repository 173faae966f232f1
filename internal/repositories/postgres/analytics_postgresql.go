package postgres

import (
	"context"

	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"gorm.io/gorm"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

func (a *AnalyticsPostgreSQL) Create(ctx context.Context, tx *gorm.DB, row *models.TestAnalytics) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(row).Error
}

func (a *AnalyticsPostgreSQL) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.TestAnalytics, error) {
	db := a.getDB(tx)
	var row models.TestAnalytics
	if err := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (a *AnalyticsPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AnalyticsFilters) ([]*models.TestAnalytics, int64, error) {
	db := a.getDB(tx)
	var rows []*models.TestAnalytics
	var total int64

	query := db.WithContext(ctx).Model(&models.TestAnalytics{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.DateFrom != nil {
		query = query.Where("evaluated_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("evaluated_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("evaluated_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (a *AnalyticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
