package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// CriteriaPerBatch is the number of judging criteria every rating
	// submission must cover.
	CriteriaPerBatch = 5

	ScoreMin = 0
	ScoreMax = 20

	// LegacyScoreMax bounds the old flat per-image scale.
	LegacyScoreMax = 10
)

// Rating is one criterion score given by an evaluator to a user inside a
// contest category. The composite unique index makes resubmission of the
// same (evaluator, evaluated, category, criteria) tuple an update, never a
// duplicate row.
type Rating struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EvaluatorID     uuid.UUID `json:"evaluator_id" gorm:"type:uuid;not null;uniqueIndex:idx_rating_key,priority:1"`
	EvaluatedUserID uuid.UUID `json:"evaluated_user_id" gorm:"type:uuid;not null;uniqueIndex:idx_rating_key,priority:2;index"`
	Category        string    `json:"category" gorm:"not null;size:1;uniqueIndex:idx_rating_key,priority:3"`
	Criteria        string    `json:"criteria" gorm:"not null;size:50;uniqueIndex:idx_rating_key,priority:4"`
	Score           int       `json:"score" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ImageRating is the legacy per-image flat score (0-10). Kept as its own
// table and flow; it is not merged with the per-criteria ledger.
type ImageRating struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EvaluatorID uuid.UUID `json:"evaluator_id" gorm:"type:uuid;not null;index"`
	ImageID     uuid.UUID `json:"image_id" gorm:"type:uuid;not null;index"`
	Rating      int       `json:"rating" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (ImageRating) TableName() string {
	return "image_ratings"
}

func (r *ImageRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
