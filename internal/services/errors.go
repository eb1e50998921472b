package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/validator"
)

// Sentinel errors mapped to HTTP status codes by the handlers
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrImageNotFound  = errors.New("image not found")
	ErrRatingNotFound = errors.New("rating not found")
	ErrTokenNotFound  = errors.New("token not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("user already registered")
	ErrTokenExpired       = errors.New("token expired")

	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// ValidationErrors re-exports the validator error list so handlers can
// errors.As against the services package.
type ValidationErrors = validator.ValidationErrors

// NewValidationError wraps one field failure as a ValidationErrors value
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}}
}

// BusinessRuleError signals a domain rule rejection, such as an exceeded
// entry quota.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// PermissionError signals that a user may not perform an action on a resource
type PermissionError struct {
	UserID     uuid.UUID
	ResourceID uuid.UUID
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resourceID uuid.UUID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}
