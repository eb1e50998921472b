package repositories

import (
	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	UserType  *models.UserType `json:"user_type"`
	Category  *string          `json:"category"`
	Query     string           `json:"query"` // name or email
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "name"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type ImageFilters struct {
	UserID      *uuid.UUID `json:"user_id"`
	Subcategory *string    `json:"subcategory"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortBy      string     `json:"sort_by"`
	SortOrder   string     `json:"sort_order"`
}

// ===== SHARED HELPER STRUCTS =====

// RatingKey identifies one evaluator's batch of criteria scores for a user
// inside a contest category.
type RatingKey struct {
	EvaluatorID     uuid.UUID `json:"evaluator_id"`
	EvaluatedUserID uuid.UUID `json:"evaluated_user_id"`
	Category        string    `json:"category"`
}
