package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/config"
	"github.com/foto-parana/contest-service/internal/events"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/validator"
)

type imageService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher

	uploadConfig config.UploadConfig
}

func NewImageService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	eventPublisher events.EventPublisher,
	uploadConfig config.UploadConfig,
) ImageService {
	return &imageService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
		uploadConfig:   uploadConfig,
	}
}

// quotaFor returns how many entries one user may hold in a subcategory
func (s *imageService) quotaFor(subcategory string) int {
	if subcategory == string(models.CategoryA) {
		return s.uploadConfig.CategoryAQuota
	}
	return s.uploadConfig.CategoryBQuota
}

// Upload stores a JPEG entry after the binary and quota checks pass. The
// quota count and insert run in one transaction so concurrent uploads cannot
// slip past the limit.
func (s *imageService) Upload(ctx context.Context, userID uuid.UUID, req *ImageUploadRequest) (*models.ImageOut, error) {
	s.logger.Info("Uploading image", "user_id", userID, "subcategory", req.Subcategory)

	if errs := s.validator.ValidateImageUpload(req.File.ContentType, req.File.Size, req.Subcategory, s.uploadConfig.MaxImageSize); errs.HasErrors() {
		return nil, errs
	}

	exists, err := s.repo.User().ExistsByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	image := &models.Image{
		UserID:      userID,
		Data:        req.File.Data,
		ContentType: req.File.ContentType,
		Size:        req.File.Size,
		Subcategory: req.Subcategory,
		Title:       req.Title,
		Place:       req.Place,
		Description: req.Description,
		Equipment:   datatypes.JSONMap(req.Equipment),
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		count, err := txRepo.Image().CountBySubcategory(ctx, nil, userID, req.Subcategory)
		if err != nil {
			return err
		}

		quota := s.quotaFor(req.Subcategory)
		if count >= int64(quota) {
			return NewBusinessRuleError("entry_quota",
				fmt.Sprintf("subcategory %s allows at most %d entries per user", req.Subcategory, quota),
				map[string]interface{}{
					"subcategory": req.Subcategory,
					"quota":       quota,
					"current":     count,
				})
		}

		return txRepo.Image().Create(ctx, nil, image)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventImageUploaded, events.ImageUploadedEvent{
		ImageID:     image.ID,
		UserID:      userID,
		Subcategory: req.Subcategory,
		Size:        req.File.Size,
	}))

	s.logger.Info("Image uploaded", "image_id", image.ID, "user_id", userID)

	return &models.ImageOut{ImageID: image.ID}, nil
}

func (s *imageService) GetDetails(ctx context.Context, id uuid.UUID) (*models.ImageDetails, error) {
	image, err := s.repo.Image().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return imageDetails(image), nil
}

func (s *imageService) GetData(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	image, err := s.repo.Image().GetData(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image data: %w", err)
	}
	return image, nil
}

// Update patches entry metadata and optionally replaces the binary. Only the
// owner may modify an entry.
func (s *imageService) Update(ctx context.Context, id uuid.UUID, req *UpdateImageRequest, file *FileUpload, userID uuid.UUID) (*models.ImageDetails, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	image, err := s.repo.Image().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	if image.UserID != userID {
		return nil, NewPermissionError(userID, id, "image", "update", "not the owner")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Place != nil {
		updates["place"] = *req.Place
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if file != nil {
		if errs := s.validator.ValidateImageUpload(file.ContentType, file.Size, image.Subcategory, s.uploadConfig.MaxImageSize); errs.HasErrors() {
			return nil, errs
		}
		updates["data"] = file.Data
		updates["content_type"] = file.ContentType
		updates["size"] = file.Size
	}

	if len(updates) > 0 {
		if err := s.repo.Image().Update(ctx, nil, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update image: %w", err)
		}
	}

	return s.GetDetails(ctx, id)
}

// Delete removes an entry; only the owner may do so
func (s *imageService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	image, err := s.repo.Image().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to get image: %w", err)
	}

	if image.UserID != userID {
		return NewPermissionError(userID, id, "image", "delete", "not the owner")
	}

	if err := s.repo.Image().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.logger.Info("Image deleted", "image_id", id, "user_id", userID)

	return nil
}

func (s *imageService) List(ctx context.Context, filters repositories.ImageFilters) (*ImageListResponse, error) {
	images, total, err := s.repo.Image().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	out := make([]*models.ImageDetails, 0, len(images))
	for _, img := range images {
		out = append(out, imageDetails(img))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &ImageListResponse{
		Images: out,
		Total:  total,
		Page:   page,
		Size:   len(out),
	}, nil
}

func (s *imageService) GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.ImageOut, error) {
	images, err := s.repo.Image().GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user images: %w", err)
	}

	out := make([]*models.ImageOut, 0, len(images))
	for _, img := range images {
		out = append(out, &models.ImageOut{ImageID: img.ID})
	}
	return out, nil
}

func (s *imageService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func imageDetails(image *models.Image) *models.ImageDetails {
	return &models.ImageDetails{
		ImageID:     image.ID,
		Title:       image.Title,
		Place:       image.Place,
		Description: image.Description,
		Subcategory: image.Subcategory,
		Equipment:   map[string]interface{}(image.Equipment),
	}
}
