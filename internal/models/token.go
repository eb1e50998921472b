package models

import (
	"time"

	"github.com/google/uuid"
)

// Token is an issued access token, persisted so sessions can be revoked.
type Token struct {
	Token          string    `json:"token" gorm:"primaryKey;size:512"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	ExpirationDate time.Time `json:"expiration_date"`

	CreatedAt time.Time `json:"created_at"`
}

func (Token) TableName() string {
	return "tokens"
}
