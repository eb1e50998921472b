package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
)

// ReportRepository interface for aggregated reporting queries
type ReportRepository interface {
	// UserMediaAverages returns every user with their per-category mean
	// score; users with no ratings in a category carry a nil mean.
	UserMediaAverages(ctx context.Context, tx *gorm.DB) ([]*models.UserMediaRow, error)

	// CategoryAverage returns the mean score one user earned inside a
	// category, or nil when no ratings exist.
	CategoryAverage(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category string) (*float64, error)
}
