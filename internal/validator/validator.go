package validator

// Validator is the validation entry point services and handlers share
type Validator = BusinessValidator

// New creates a validator with all business rules registered
func New() *Validator {
	return NewBusinessValidator()
}
