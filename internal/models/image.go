package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Image struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	Data        []byte `json:"-" gorm:"type:bytea"`
	ContentType string `json:"content_type" gorm:"size:50"`
	Size        int64  `json:"size"`

	// Contest subcategory ("A" or "B"), quota-capped per user.
	Subcategory string `json:"subcategory" gorm:"not null;size:1;index"`

	Title       string `json:"title" gorm:"size:200"`
	Place       string `json:"place" gorm:"size:200"`
	Description string `json:"description" gorm:"size:500"`

	// Free-form capture metadata (camera, lens, exposure settings).
	Equipment datatypes.JSONMap `json:"equipment" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Image) TableName() string {
	return "images"
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
