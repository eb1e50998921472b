package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
)

// ImageRepository interface for contest entry images
type ImageRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, image *models.Image) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Image, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Binary access; GetByID omits the blob to keep listings cheap
	GetData(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Image, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ImageFilters) ([]*models.Image, int64, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*models.Image, error)

	// Quota checks
	CountBySubcategory(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subcategory string) (int64, error)
}
