package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foto-parana/contest-service/internal/cache"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
)

type RatingPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewRatingPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.RatingRepository {
	return &RatingPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *RatingPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// UpsertBatch inserts criteria scores; a conflict on the ledger key turns the
// insert into a score update, so resubmission never duplicates rows.
func (r *RatingPostgreSQL) UpsertBatch(ctx context.Context, tx *gorm.DB, ratings []*models.Rating) error {
	if len(ratings) == 0 {
		return nil
	}

	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "evaluator_id"},
				{Name: "evaluated_user_id"},
				{Name: "category"},
				{Name: "criteria"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Create(&ratings).Error
	if err != nil {
		return fmt.Errorf("failed to upsert ratings: %w", err)
	}

	cache.InvalidateReportCache(ctx, r.cacheManager)

	return nil
}

// GetByKey returns the criteria rows for one evaluator/user/category key
func (r *RatingPostgreSQL) GetByKey(ctx context.Context, tx *gorm.DB, key repositories.RatingKey) ([]*models.Rating, error) {
	db := r.getDB(tx)
	var ratings []*models.Rating
	err := db.WithContext(ctx).
		Where("evaluator_id = ? AND evaluated_user_id = ? AND category = ?",
			key.EvaluatorID, key.EvaluatedUserID, key.Category).
		Order("criteria ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}
	return ratings, nil
}

// DeleteByKey removes every criteria row for one ledger key
func (r *RatingPostgreSQL) DeleteByKey(ctx context.Context, tx *gorm.DB, key repositories.RatingKey) (int64, error) {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Where("evaluator_id = ? AND evaluated_user_id = ? AND category = ?",
			key.EvaluatorID, key.EvaluatedUserID, key.Category).
		Delete(&models.Rating{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete ratings: %w", result.Error)
	}

	cache.InvalidateReportCache(ctx, r.cacheManager)

	return result.RowsAffected, nil
}

// CountByKey counts the criteria rows for one ledger key
func (r *RatingPostgreSQL) CountByKey(ctx context.Context, tx *gorm.DB, key repositories.RatingKey) (int64, error) {
	db := r.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("evaluator_id = ? AND evaluated_user_id = ? AND category = ?",
			key.EvaluatorID, key.EvaluatedUserID, key.Category).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return count, nil
}

// SetImageRating stores one legacy flat score, replacing a previous score by
// the same evaluator on the same image
func (r *RatingPostgreSQL) SetImageRating(ctx context.Context, tx *gorm.DB, rating *models.ImageRating) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.ImageRating{}).
		Where("evaluator_id = ? AND image_id = ?", rating.EvaluatorID, rating.ImageID).
		Update("rating", rating.Rating)
	if result.Error != nil {
		return fmt.Errorf("failed to update image rating: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if err := db.WithContext(ctx).Create(rating).Error; err != nil {
		return fmt.Errorf("failed to create image rating: %w", err)
	}

	return nil
}

// GetImageRating returns one evaluator's score on one image
func (r *RatingPostgreSQL) GetImageRating(ctx context.Context, tx *gorm.DB, evaluatorID, imageID uuid.UUID) (*models.ImageRating, error) {
	db := r.getDB(tx)
	var rating models.ImageRating
	err := db.WithContext(ctx).
		First(&rating, "evaluator_id = ? AND image_id = ?", evaluatorID, imageID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get image rating: %w", err)
	}
	return &rating, nil
}

// GetImageRatingsForUser lists the legacy scores a user's images received
// in one subcategory
func (r *RatingPostgreSQL) GetImageRatingsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subcategory string) ([]*models.ImageRating, error) {
	db := r.getDB(tx)
	var ratings []*models.ImageRating
	err := db.WithContext(ctx).
		Table("image_ratings").
		Select("image_ratings.*").
		Joins("JOIN images ON images.id = image_ratings.image_id").
		Where("images.user_id = ? AND images.subcategory = ?", userID, subcategory).
		Order("image_ratings.created_at ASC").
		Scan(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get image ratings for user: %w", err)
	}
	return ratings, nil
}
