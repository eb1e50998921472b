package validator

import (
	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/models"
)

// UserCreateRequest represents registration form fields. The PDF document
// arrives as a separate multipart file and is validated by the handler.
type UserCreateRequest struct {
	Name     string          `form:"name" json:"name" validate:"required,min=1,max=100"`
	Document string          `form:"document" json:"document" validate:"required,min=5,max=30"`
	Email    string          `form:"email" json:"email" validate:"required,email"`
	UserType models.UserType `form:"user_type" json:"user_type" validate:"required,user_type"`
	Password string          `form:"password" json:"password" validate:"required,min=6,max=72"`
	Category string          `form:"category" json:"category" validate:"required,enrollment_category"`
	Address  string          `form:"address" json:"address" validate:"omitempty,max=500"`
}

// UserUpdateRequest is an explicit optional-field patch: only non-nil
// fields are applied.
type UserUpdateRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Document *string          `json:"document" validate:"omitempty,min=5,max=30"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	UserType *models.UserType `json:"user_type" validate:"omitempty,user_type"`
	Category *string          `json:"category" validate:"omitempty,enrollment_category"`
	Address  *string          `json:"address" validate:"omitempty,max=500"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserInviteRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=100"`
	Document string          `json:"document" validate:"required,min=5,max=30"`
	Email    string          `json:"email" validate:"required,email"`
	UserType models.UserType `json:"user_type" validate:"required,user_type"`
	Category string          `json:"category" validate:"required,enrollment_category"`
}

// SubmitRatingsRequest is the current multi-criteria rating flow.
type SubmitRatingsRequest struct {
	EvaluatedUserID uuid.UUID              `json:"evaluated_user_id" validate:"required"`
	EvaluatorID     uuid.UUID              `json:"evaluator_id" validate:"required"`
	Category        string                 `json:"category" validate:"required,contest_category"`
	Ratings         []models.CriteriaScore `json:"ratings" validate:"required"`
}

// RatingsQueryRequest selects the per-criteria detail view.
type RatingsQueryRequest struct {
	UserID      uuid.UUID `form:"user_id" json:"user_id" validate:"required"`
	Category    string    `form:"category" json:"category" validate:"required,contest_category"`
	EvaluatorID uuid.UUID `form:"evaluator_id" json:"evaluator_id" validate:"required"`
}

// RateImageRequest is the legacy single-score-per-image flow.
type RateImageRequest struct {
	ImageID uuid.UUID `json:"image_id" validate:"required"`
	Rating  int       `json:"rating" validate:"legacy_score_range"`
	UserID  uuid.UUID `json:"user_id" validate:"required"`
}

// ImageRatingQueryRequest selects the scores one user's images received in
// a subcategory.
type ImageRatingQueryRequest struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	Subcategory string    `json:"subcategory" validate:"required,subcategory"`
}

// ImageUpdateRequest patches image metadata; a replacement binary arrives
// as a multipart file.
type ImageUpdateRequest struct {
	Title       *string `form:"title" json:"title" validate:"omitempty,max=200"`
	Place       *string `form:"place" json:"place" validate:"omitempty,max=200"`
	Description *string `form:"description" json:"description" validate:"omitempty,max=500"`
}
