package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
)

// RatingRepository interface for the per-criteria rating ledger and the
// legacy per-image flat scores.
type RatingRepository interface {
	// UpsertBatch writes one batch of criteria scores; rows sharing the
	// (evaluator, evaluated, category, criteria) key update in place.
	UpsertBatch(ctx context.Context, tx *gorm.DB, ratings []*models.Rating) error

	// GetByKey returns all criteria rows for one rating key.
	GetByKey(ctx context.Context, tx *gorm.DB, key RatingKey) ([]*models.Rating, error)

	// DeleteByKey removes every criteria row for one rating key.
	DeleteByKey(ctx context.Context, tx *gorm.DB, key RatingKey) (int64, error)

	// CountByKey reports how many criteria rows exist for one rating key.
	CountByKey(ctx context.Context, tx *gorm.DB, key RatingKey) (int64, error)

	// Legacy per-image scores
	SetImageRating(ctx context.Context, tx *gorm.DB, rating *models.ImageRating) error
	GetImageRating(ctx context.Context, tx *gorm.DB, evaluatorID, imageID uuid.UUID) (*models.ImageRating, error)

	// GetImageRatingsForUser returns the scores received by one user's
	// images in a subcategory, across all evaluators.
	GetImageRatingsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subcategory string) ([]*models.ImageRating, error)
}
