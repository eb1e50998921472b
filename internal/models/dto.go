package models

import (
	"time"

	"github.com/google/uuid"
)

// ===== USER DTOs =====

type UserOut struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Document string    `json:"document"`
	Email    string    `json:"email"`
	UserType UserType  `json:"user_type"`
	Category string    `json:"category"`
}

func NewUserOut(u *User) *UserOut {
	return &UserOut{
		ID:       u.ID,
		Name:     u.Name,
		Document: u.Document,
		Email:    u.Email,
		UserType: u.UserType,
		Category: u.Category,
	}
}

type LoginResponse struct {
	Token          string    `json:"token"`
	TokenType      string    `json:"token_type"`
	ExpirationDate time.Time `json:"expiration_date"`
	User           *UserOut  `json:"user"`
}

// ===== RATING DTOs =====

// CriteriaScore is one (criteria, score) pair of a rating batch.
type CriteriaScore struct {
	Criteria string `json:"criteria"`
	Score    int    `json:"score"`
}

// ===== REPORT DTOs =====

// UserMediaRow is one row of the cross-user average report. The JSON keys
// match what the report renderer consumes; an average stays nil when the
// user has no ratings in that category.
type UserMediaRow struct {
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	UserCategory    string    `json:"user_category"`
	CompleteAddress string    `json:"complete_address"`
	CategoriaAMedia *float64  `json:"categoria_a_media"`
	CategoriaBMedia *float64  `json:"categoria_b_media"`
}

// ImageOut lists image identity without the binary payload.
type ImageOut struct {
	ImageID uuid.UUID `json:"image_id"`
}

type ImageDetails struct {
	ImageID     uuid.UUID              `json:"image_id"`
	Title       string                 `json:"title"`
	Place       string                 `json:"place"`
	Description string                 `json:"description"`
	Subcategory string                 `json:"subcategory"`
	Equipment   map[string]interface{} `json:"equipment,omitempty"`
}
