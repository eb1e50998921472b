package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserType string

const (
	// UserTypeEvaluator marks jury members allowed to score other users.
	UserTypeEvaluator   UserType = "A"
	UserTypeParticipant UserType = "P"
)

type ContestCategory string

const (
	CategoryA ContestCategory = "A"
	CategoryB ContestCategory = "B"
)

// Valid reports whether the value names a real contest category.
func (c ContestCategory) Valid() bool {
	return c == CategoryA || c == CategoryB
}

const (
	ImageContentTypeJPEG   = "image/jpeg"
	DocumentContentTypePDF = "application/pdf"
)

type User struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" gorm:"not null;size:100;index"`

	// Uniqueness is scoped to live rows so a deleted account frees its
	// email and document for re-registration.
	Document string `json:"document" gorm:"uniqueIndex:udx_users_document,where:deleted_at IS NULL;not null;size:30"`
	Email    string `json:"email" gorm:"uniqueIndex:udx_users_email,where:deleted_at IS NULL;not null;size:255"`

	UserType UserType `json:"user_type" gorm:"not null;size:1"`

	// Enrollment tier ("1".."5"), assigned at registration.
	Category string `json:"category" gorm:"size:1;index"`

	// Registration PDF, stored inline like the rest of the record.
	File []byte `json:"-" gorm:"type:bytea"`

	Password string `json:"-" gorm:"not null;size:100"`
	Address  string `json:"complete_address" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsEvaluator reports whether the user may score other participants.
func (u *User) IsEvaluator() bool {
	return u.UserType == UserTypeEvaluator
}
