package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prepnest/exam-engine/internal/cache"
	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CatalogPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCatalogPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CatalogRepository {
	return &CatalogPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CatalogPostgreSQL) ResolveQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*models.Question, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	db := c.getDB(tx)

	cacheKey := fmt.Sprintf("batch:%s", batchKey(questionIDs))
	var questions []*models.Question

	err := c.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var fetched []*models.Question
		if err := db.WithContext(ctx).
			Where("question_id IN ?", questionIDs).
			Find(&fetched).Error; err != nil {
			return nil, err
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (c *CatalogPostgreSQL) ExistAll(ctx context.Context, tx *gorm.DB, questionIDs []string) (bool, []string, error) {
	if len(questionIDs) == 0 {
		return true, nil, nil
	}
	db := c.getDB(tx)

	var found []string
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("question_id IN ?", questionIDs).
		Pluck("question_id", &found).Error; err != nil {
		return false, nil, err
	}

	if len(found) == len(questionIDs) {
		return true, nil, nil
	}

	foundSet := make(map[string]struct{}, len(found))
	for _, id := range found {
		foundSet[id] = struct{}{}
	}
	var missing []string
	for _, id := range questionIDs {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return false, missing, nil
}

// batchKey derives a stable cache key from an id set, ignoring order.
func batchKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func (c *CatalogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
