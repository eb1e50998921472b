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

type ImagePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewImagePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ImageRepository {
	return &ImagePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (i *ImagePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return i.db
}

// Create inserts a new image and invalidates the owner's listings
func (i *ImagePostgreSQL) Create(ctx context.Context, tx *gorm.DB, image *models.Image) error {
	db := i.getDB(tx)
	if err := db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	cache.InvalidateImageCache(ctx, i.cacheManager, image.ID.String(), image.UserID.String())

	return nil
}

// GetByID retrieves image metadata with caching; the binary stays in the database
func (i *ImagePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Image, error) {
	db := i.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var image models.Image

	err := i.cacheManager.Image.CacheOrExecute(ctx, cacheKey, &image, cache.ImageCacheConfig.TTL, func() (interface{}, error) {
		var dbImage models.Image
		err := db.WithContext(ctx).
			Omit("data").
			First(&dbImage, "id = ?", id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get image: %w", err)
		}
		return &dbImage, nil
	})
	if err != nil {
		return nil, err
	}

	return &image, nil
}

// GetData loads the full record including the JPEG payload. Never cached.
func (i *ImagePostgreSQL) GetData(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Image, error) {
	db := i.getDB(tx)
	var image models.Image
	err := db.WithContext(ctx).First(&image, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get image data: %w", err)
	}
	return &image, nil
}

// Update applies a partial column update and invalidates caches
func (i *ImagePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	db := i.getDB(tx)

	var image models.Image
	if err := db.WithContext(ctx).Select("id, user_id").First(&image, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get image before update: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}

	cache.InvalidateImageCache(ctx, i.cacheManager, id.String(), image.UserID.String())

	return nil
}

// Delete hard deletes an image and its cached metadata
func (i *ImagePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := i.getDB(tx)

	var image models.Image
	if err := db.WithContext(ctx).Select("id, user_id").First(&image, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to get image before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Image{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	cache.InvalidateImageCache(ctx, i.cacheManager, id.String(), image.UserID.String())

	return nil
}

// List retrieves image metadata with filters and pagination
func (i *ImagePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ImageFilters) ([]*models.Image, int64, error) {
	db := i.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Image{})

	query = i.helpers.ApplyImageFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	query = i.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var images []*models.Image
	if err := query.Omit("data").Find(&images).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list images: %w", err)
	}

	return images, total, nil
}

// GetByUser retrieves all image metadata owned by one user
func (i *ImagePostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*models.Image, error) {
	db := i.getDB(tx)
	var images []*models.Image
	err := db.WithContext(ctx).
		Omit("data").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get images by user: %w", err)
	}
	return images, nil
}

// CountBySubcategory counts a user's entries in one subcategory for quota checks
func (i *ImagePostgreSQL) CountBySubcategory(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subcategory string) (int64, error) {
	db := i.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Image{}).
		Where("user_id = ? AND subcategory = ?", userID, subcategory).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count images by subcategory: %w", err)
	}
	return count, nil
}
