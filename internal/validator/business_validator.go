package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/foto-parana/contest-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate

	criteriaPerBatch int
	scoreMin         int
	scoreMax         int
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{
		validate:         validate,
		criteriaPerBatch: models.CriteriaPerBatch,
		scoreMin:         models.ScoreMin,
		scoreMax:         models.ScoreMax,
	}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRatingSubmit validates a rating batch: exactly one score per
// judging criterion, no duplicates, every score within bounds.
func (bv *BusinessValidator) ValidateRatingSubmit(req *SubmitRatingsRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateRatingBatch(req.Ratings)...)

	return errors
}

// ValidateImageUpload validates image binary constraints before any
// quota or persistence work happens.
func (bv *BusinessValidator) ValidateImageUpload(contentType string, size int64, subcategory string, maxSize int64) ValidationErrors {
	var errors ValidationErrors

	if !strings.EqualFold(contentType, models.ImageContentTypeJPEG) {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "only JPEG images are accepted",
			Value:   contentType,
			Rule:    "content_type",
		})
	}

	if size <= 0 {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "file is empty",
			Value:   size,
			Rule:    "file_size",
		})
	} else if size > maxSize {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d byte limit", maxSize),
			Value:   size,
			Rule:    "file_size",
		})
	}

	if !models.ContestCategory(subcategory).Valid() {
		errors = append(errors, ValidationError{
			Field:   "subcategory",
			Message: "must be a valid contest category (A or B)",
			Value:   subcategory,
			Rule:    "subcategory",
		})
	}

	return errors
}

// ValidateUserDocument validates the registration PDF upload.
func (bv *BusinessValidator) ValidateUserDocument(contentType string, size int64, maxSize int64) ValidationErrors {
	var errors ValidationErrors

	if !strings.EqualFold(contentType, models.DocumentContentTypePDF) {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "only PDF documents are accepted",
			Value:   contentType,
			Rule:    "content_type",
		})
	}

	if size <= 0 {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "file is empty",
			Value:   size,
			Rule:    "file_size",
		})
	} else if size > maxSize {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d byte limit", maxSize),
			Value:   size,
			Rule:    "file_size",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Multi-criteria score validation (0-20)
	bv.validate.RegisterValidation("score_range", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= int64(bv.scoreMin) && score <= int64(bv.scoreMax)
	})

	// Legacy per-image score validation (0-10)
	bv.validate.RegisterValidation("legacy_score_range", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= 0 && score <= models.LegacyScoreMax
	})

	// Contest category validation (rating/report axis)
	bv.validate.RegisterValidation("contest_category", func(fl validator.FieldLevel) bool {
		return models.ContestCategory(fl.Field().String()).Valid()
	})

	// Image subcategory validation
	bv.validate.RegisterValidation("subcategory", func(fl validator.FieldLevel) bool {
		return models.ContestCategory(fl.Field().String()).Valid()
	})

	// User type validation
	bv.validate.RegisterValidation("user_type", func(fl validator.FieldLevel) bool {
		uType := fl.Field().String()
		validTypes := []models.UserType{models.UserTypeEvaluator, models.UserTypeParticipant}
		for _, vt := range validTypes {
			if models.UserType(uType) == vt {
				return true
			}
		}
		return false
	})

	// Enrollment tier validation ("1" through "5")
	bv.validate.RegisterValidation("enrollment_category", func(fl validator.FieldLevel) bool {
		tier := fl.Field().String()
		validTiers := []string{"1", "2", "3", "4", "5"}
		for _, vt := range validTiers {
			if tier == vt {
				return true
			}
		}
		return false
	})
}

// validateRatingBatch checks the criteria set of a rating submission
func (bv *BusinessValidator) validateRatingBatch(ratings []models.CriteriaScore) ValidationErrors {
	var errors ValidationErrors

	if len(ratings) != bv.criteriaPerBatch {
		errors = append(errors, ValidationError{
			Field:   "ratings",
			Message: fmt.Sprintf("exactly %d criteria scores are required", bv.criteriaPerBatch),
			Value:   len(ratings),
			Rule:    "business_logic",
		})
	}

	seen := make(map[string]bool, len(ratings))
	for i, r := range ratings {
		criteria := strings.TrimSpace(r.Criteria)
		if criteria == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("ratings[%d].criteria", i),
				Message: "criteria name cannot be empty",
				Value:   r.Criteria,
				Rule:    "business_logic",
			})
			continue
		}

		if seen[criteria] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("ratings[%d].criteria", i),
				Message: fmt.Sprintf("duplicate criterion %q in batch", criteria),
				Value:   criteria,
				Rule:    "business_logic",
			})
		}
		seen[criteria] = true

		if r.Score < bv.scoreMin || r.Score > bv.scoreMax {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("ratings[%d].score", i),
				Message: fmt.Sprintf("score for %q must be between %d and %d", criteria, bv.scoreMin, bv.scoreMax),
				Value:   r.Score,
				Rule:    "score_range",
			})
		}
	}

	return errors
}
