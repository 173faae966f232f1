package postgres

import (
	"context"
	"fmt"

	"github.com/prepnest/exam-engine/internal/cache"
	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.TestDefinition) error {
	db := t.getDB(tx)
	return db.WithContext(ctx).Create(test).Error
}

func (t *TestPostgreSQL) GetByTestID(ctx context.Context, tx *gorm.DB, testID string) (*models.TestDefinition, error) {
	db := t.getDB(tx)

	// Definitions are immutable post-create, so the cache never goes stale.
	cacheKey := fmt.Sprintf("test_id:%s", testID)
	var test models.TestDefinition

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.TestDefinition
		if err := db.WithContext(ctx).Where("test_id = ?", testID).First(&dbTest).Error; err != nil {
			return nil, err
		}
		return &dbTest, nil
	})
	if err != nil {
		return nil, err
	}

	return &test, nil
}

func (t *TestPostgreSQL) ExistsByTestID(ctx context.Context, tx *gorm.DB, testID string) (bool, error) {
	db := t.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.TestDefinition{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	return count > 0, err
}

func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.TestDefinition, int64, error) {
	db := t.getDB(tx)
	var tests []*models.TestDefinition
	var total int64

	query := db.WithContext(ctx).Model(&models.TestDefinition{})
	query = t.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = t.applyPaginationAndSort(query, filters)

	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) applyFilters(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// Whitelist allowed sort columns; sort input comes straight from the
// query string and must never reach the SQL verbatim.
var allowedSortColumns = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"id":            true,
	"test_id":       true,
	"title":         true,
	"time_allotted": true,
	"max_attempt":   true,
}

// sortClause builds the ORDER BY expression with SQL injection protection
func sortClause(sortBy, sortOrder string) string {
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "desc"
	}
	return sortBy + " " + sortOrder
}

func (t *TestPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	query = query.Order(sortClause(filters.SortBy, filters.SortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}
