package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/cache"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
)

type ReportPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewReportPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ReportRepository {
	return &ReportPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *ReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// UserMediaAverages builds the cross-user report in one query: every user
// joined against their per-category rating means. The LEFT JOINs keep users
// without ratings in the result with NULL averages.
func (r *ReportPostgreSQL) UserMediaAverages(ctx context.Context, tx *gorm.DB) ([]*models.UserMediaRow, error) {
	db := r.getDB(tx)
	cacheKey := "user_media"
	var rows []*models.UserMediaRow

	err := r.cacheManager.Report.CacheOrExecute(ctx, cacheKey, &rows, cache.ReportCacheConfig.TTL, func() (interface{}, error) {
		var dbRows []*models.UserMediaRow
		err := db.WithContext(ctx).
			Table("users").
			Select(`users.id AS user_id,
				users.name AS name,
				users.category AS user_category,
				users.address AS complete_address,
				ROUND(avg_a.media::numeric, 2) AS categoria_a_media,
				ROUND(avg_b.media::numeric, 2) AS categoria_b_media`).
			Joins(`LEFT JOIN (
				SELECT evaluated_user_id, AVG(score) AS media
				FROM ratings WHERE category = ? GROUP BY evaluated_user_id
			) avg_a ON avg_a.evaluated_user_id = users.id`, string(models.CategoryA)).
			Joins(`LEFT JOIN (
				SELECT evaluated_user_id, AVG(score) AS media
				FROM ratings WHERE category = ? GROUP BY evaluated_user_id
			) avg_b ON avg_b.evaluated_user_id = users.id`, string(models.CategoryB)).
			Where("users.deleted_at IS NULL").
			Order("users.name ASC").
			Scan(&dbRows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get user media averages: %w", err)
		}
		return dbRows, nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// CategoryAverage returns one user's mean score inside a category, nil when
// no ratings exist
func (r *ReportPostgreSQL) CategoryAverage(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category string) (*float64, error) {
	db := r.getDB(tx)

	var result struct {
		Media *float64
	}

	err := db.WithContext(ctx).
		Table("ratings").
		Select("ROUND(AVG(score)::numeric, 2) AS media").
		Where("evaluated_user_id = ? AND category = ?", userID, category).
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get category average: %w", err)
	}

	return result.Media, nil
}
