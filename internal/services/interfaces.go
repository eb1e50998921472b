package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/utils"
	"github.com/foto-parana/contest-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type LoginRequest = validator.UserLoginRequest
type InviteUserRequest = validator.UserInviteRequest

type SubmitRatingsRequest = validator.SubmitRatingsRequest
type RateImageRequest = validator.RateImageRequest
type ImageRatingQuery = validator.ImageRatingQueryRequest
type UpdateImageRequest = validator.ImageUpdateRequest

// FileUpload carries one uploaded binary with its declared metadata
type FileUpload struct {
	Data        []byte
	ContentType string
	Size        int64
}

// ImageUploadRequest bundles the JPEG binary with its entry metadata
type ImageUploadRequest struct {
	File        FileUpload
	Subcategory string
	Title       string
	Place       string
	Description string
	Equipment   map[string]interface{}
}

type UserListResponse struct {
	Users []*models.UserOut `json:"users"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

type ImageListResponse struct {
	Images []*models.ImageDetails `json:"images"`
	Total  int64                  `json:"total"`
	Page   int                    `json:"page"`
	Size   int                    `json:"size"`
}

// RatingsResponse is the per-criteria detail view of one rating batch
type RatingsResponse struct {
	EvaluatorID     uuid.UUID              `json:"evaluator_id"`
	EvaluatedUserID uuid.UUID              `json:"evaluated_user_id"`
	Category        string                 `json:"category"`
	Ratings         []models.CriteriaScore `json:"ratings"`
}

// ImageRatingsResponse lists the legacy scores a user's images received in
// a subcategory with their mean. The average is nil when nothing is scored.
type ImageRatingsResponse struct {
	UserID      uuid.UUID             `json:"user_id"`
	Subcategory string                `json:"subcategory"`
	Ratings     []*models.ImageRating `json:"ratings"`
	Average     *float64              `json:"average"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	// Registration and authentication
	Register(ctx context.Context, req *RegisterUserRequest, document FileUpload) (*models.UserOut, error)
	Login(ctx context.Context, req *LoginRequest) (*models.LoginResponse, error)
	ValidateSession(ctx context.Context, token string) (*utils.TokenClaims, error)

	// Account management
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserOut, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.UserOut, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)

	// Jury onboarding; the generated credentials go out by mail
	Invite(ctx context.Context, req *InviteUserRequest, invitedBy uuid.UUID) (*models.UserOut, error)

	// Registration document
	GetFile(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type ImageService interface {
	Upload(ctx context.Context, userID uuid.UUID, req *ImageUploadRequest) (*models.ImageOut, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*models.ImageDetails, error)
	GetData(ctx context.Context, id uuid.UUID) (*models.Image, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateImageRequest, file *FileUpload, userID uuid.UUID) (*models.ImageDetails, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	List(ctx context.Context, filters repositories.ImageFilters) (*ImageListResponse, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.ImageOut, error)
}

type RatingService interface {
	// Multi-criteria flow; Submit upserts in place, Overwrite replaces the
	// whole batch
	SubmitRatings(ctx context.Context, req *SubmitRatingsRequest) error
	OverwriteRatings(ctx context.Context, req *SubmitRatingsRequest) error
	GetRatings(ctx context.Context, key repositories.RatingKey) (*RatingsResponse, error)

	// Legacy per-image flow
	RateImage(ctx context.Context, req *RateImageRequest) error
	GetImageRating(ctx context.Context, evaluatorID, imageID uuid.UUID) (*models.ImageRating, error)
	ListImageRatings(ctx context.Context, req *ImageRatingQuery) (*ImageRatingsResponse, error)
}

// UserCategoryAverageResponse carries one user's mean score inside a single
// contest category. Average is nil when nobody rated the user there yet.
type UserCategoryAverageResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Category string    `json:"category"`
	Average  *float64  `json:"average"`
}

type ReportService interface {
	UserMedia(ctx context.Context) ([]*models.UserMediaRow, error)
	ExportUserMedia(ctx context.Context) ([]byte, string, error)
	UserCategoryAverage(ctx context.Context, userID uuid.UUID, category string) (*UserCategoryAverageResponse, error)
}

// Notifier sends outbound mail; kept as an interface so tests and local
// runs can swap in a recorder.
type Notifier interface {
	SendInvite(ctx context.Context, to, name, password string) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	User() UserService
	Image() ImageService
	Rating() RatingService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
