package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
)

// UserRepository interface for user account operations
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// HardDelete removes the row outright, bypassing soft delete. Used to
	// undo account creation, never for user-requested deletion.
	HardDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	GetByEmailOrDocument(ctx context.Context, tx *gorm.DB, email, document string) (*models.User, error)

	// Registration document
	GetFile(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]byte, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

// TokenRepository interface for issued session tokens
type TokenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, token *models.Token) error
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Token, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, tx *gorm.DB) (int64, error)
}
