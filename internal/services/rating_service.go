package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/events"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/validator"
)

type ratingService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewRatingService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	eventPublisher events.EventPublisher,
) RatingService {
	return &ratingService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

// authorizeEvaluation enforces who may score whom. The checks live here, not
// only in the HTTP layer, so every write path shares them.
func (s *ratingService) authorizeEvaluation(ctx context.Context, evaluatorID, evaluatedUserID uuid.UUID) error {
	evaluator, err := s.repo.User().GetByID(ctx, nil, evaluatorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get evaluator: %w", err)
	}

	if !evaluator.IsEvaluator() {
		return NewPermissionError(evaluatorID, evaluatedUserID, "rating", "submit", "user is not an evaluator")
	}

	if evaluatorID == evaluatedUserID {
		return NewPermissionError(evaluatorID, evaluatedUserID, "rating", "submit", "self-evaluation is not allowed")
	}

	exists, err := s.repo.User().ExistsByID(ctx, nil, evaluatedUserID)
	if err != nil {
		return fmt.Errorf("failed to check evaluated user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	return nil
}

// SubmitRatings writes one batch of criteria scores. Resubmitting the same
// key updates scores in place; the batch never produces duplicate rows.
func (s *ratingService) SubmitRatings(ctx context.Context, req *SubmitRatingsRequest) error {
	s.logger.Info("Submitting ratings",
		"evaluator_id", req.EvaluatorID,
		"evaluated_user_id", req.EvaluatedUserID,
		"category", req.Category)

	if errs := s.validator.ValidateRatingSubmit(req); errs.HasErrors() {
		return errs
	}

	if err := s.authorizeEvaluation(ctx, req.EvaluatorID, req.EvaluatedUserID); err != nil {
		return err
	}

	rows := s.buildRows(req)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Rating().UpsertBatch(ctx, nil, rows)
	})
	if err != nil {
		return fmt.Errorf("failed to submit ratings: %w", err)
	}

	s.publishSubmitted(ctx, req, false)

	return nil
}

// OverwriteRatings replaces the whole batch for a key: every previous row
// goes away, only the new scores remain.
func (s *ratingService) OverwriteRatings(ctx context.Context, req *SubmitRatingsRequest) error {
	s.logger.Info("Overwriting ratings",
		"evaluator_id", req.EvaluatorID,
		"evaluated_user_id", req.EvaluatedUserID,
		"category", req.Category)

	if errs := s.validator.ValidateRatingSubmit(req); errs.HasErrors() {
		return errs
	}

	if err := s.authorizeEvaluation(ctx, req.EvaluatorID, req.EvaluatedUserID); err != nil {
		return err
	}

	key := repositories.RatingKey{
		EvaluatorID:     req.EvaluatorID,
		EvaluatedUserID: req.EvaluatedUserID,
		Category:        req.Category,
	}
	rows := s.buildRows(req)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Rating().DeleteByKey(ctx, nil, key); err != nil {
			return err
		}
		return txRepo.Rating().UpsertBatch(ctx, nil, rows)
	})
	if err != nil {
		return fmt.Errorf("failed to overwrite ratings: %w", err)
	}

	s.publishSubmitted(ctx, req, true)

	return nil
}

// GetRatings returns the per-criteria detail for one key. A key nobody has
// scored yet yields an empty batch, not an error.
func (s *ratingService) GetRatings(ctx context.Context, key repositories.RatingKey) (*RatingsResponse, error) {
	rows, err := s.repo.Rating().GetByKey(ctx, nil, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}

	scores := make([]models.CriteriaScore, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, models.CriteriaScore{
			Criteria: row.Criteria,
			Score:    row.Score,
		})
	}

	return &RatingsResponse{
		EvaluatorID:     key.EvaluatorID,
		EvaluatedUserID: key.EvaluatedUserID,
		Category:        key.Category,
		Ratings:         scores,
	}, nil
}

// ===== LEGACY PER-IMAGE FLOW =====

// RateImage stores one flat score on an image, replacing any previous score
// by the same evaluator.
func (s *ratingService) RateImage(ctx context.Context, req *RateImageRequest) error {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return errs
	}

	image, err := s.repo.Image().GetByID(ctx, nil, req.ImageID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to get image: %w", err)
	}

	if err := s.authorizeEvaluation(ctx, req.UserID, image.UserID); err != nil {
		return err
	}

	rating := &models.ImageRating{
		EvaluatorID: req.UserID,
		ImageID:     req.ImageID,
		Rating:      req.Rating,
	}
	if err := s.repo.Rating().SetImageRating(ctx, nil, rating); err != nil {
		return fmt.Errorf("failed to rate image: %w", err)
	}

	s.logger.Info("Image rated", "evaluator_id", req.UserID, "image_id", req.ImageID)

	return nil
}

func (s *ratingService) GetImageRating(ctx context.Context, evaluatorID, imageID uuid.UUID) (*models.ImageRating, error) {
	rating, err := s.repo.Rating().GetImageRating(ctx, nil, evaluatorID, imageID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get image rating: %w", err)
	}
	return rating, nil
}

// ListImageRatings returns the flat scores one user's images received in a
// subcategory together with their mean.
func (s *ratingService) ListImageRatings(ctx context.Context, req *ImageRatingQuery) (*ImageRatingsResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	exists, err := s.repo.User().ExistsByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check rated user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	rows, err := s.repo.Rating().GetImageRatingsForUser(ctx, nil, req.UserID, req.Subcategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list image ratings: %w", err)
	}

	resp := &ImageRatingsResponse{
		UserID:      req.UserID,
		Subcategory: req.Subcategory,
		Ratings:     rows,
	}
	if len(rows) > 0 {
		var sum float64
		for _, row := range rows {
			sum += float64(row.Rating)
		}
		avg := sum / float64(len(rows))
		resp.Average = &avg
	}

	return resp, nil
}

// ===== HELPERS =====

func (s *ratingService) buildRows(req *SubmitRatingsRequest) []*models.Rating {
	rows := make([]*models.Rating, 0, len(req.Ratings))
	for _, cs := range req.Ratings {
		rows = append(rows, &models.Rating{
			EvaluatorID:     req.EvaluatorID,
			EvaluatedUserID: req.EvaluatedUserID,
			Category:        req.Category,
			Criteria:        cs.Criteria,
			Score:           cs.Score,
		})
	}
	return rows
}

func (s *ratingService) publishSubmitted(ctx context.Context, req *SubmitRatingsRequest, overwrite bool) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewEvent(events.EventRatingSubmitted, events.RatingSubmittedEvent{
		EvaluatorID:     req.EvaluatorID,
		EvaluatedUserID: req.EvaluatedUserID,
		Category:        req.Category,
		CriteriaCount:   len(req.Ratings),
		Overwrite:       overwrite,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
