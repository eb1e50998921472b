package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
)

type TokenPostgreSQL struct {
	db *gorm.DB
}

func NewTokenPostgreSQL(db *gorm.DB) repositories.TokenRepository {
	return &TokenPostgreSQL{db: db}
}

func (t *TokenPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TokenPostgreSQL) Create(ctx context.Context, tx *gorm.DB, token *models.Token) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (t *TokenPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Token, error) {
	db := t.getDB(tx)
	var record models.Token
	err := db.WithContext(ctx).First(&record, "token = ?", token).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &record, nil
}

func (t *TokenPostgreSQL) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Token{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

func (t *TokenPostgreSQL) DeleteExpired(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := t.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Token{}, "expiration_date < ?", time.Now())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
