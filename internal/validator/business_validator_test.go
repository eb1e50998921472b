package validator

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/models"
)

func fiveCriteria() []models.CriteriaScore {
	return []models.CriteriaScore{
		{Criteria: "creativity", Score: 18},
		{Criteria: "technique", Score: 15},
		{Criteria: "composition", Score: 20},
		{Criteria: "originality", Score: 0},
		{Criteria: "impact", Score: 12},
	}
}

func TestValidateRatingSubmit(t *testing.T) {
	bv := New()

	base := func() *SubmitRatingsRequest {
		return &SubmitRatingsRequest{
			EvaluatedUserID: uuid.New(),
			EvaluatorID:     uuid.New(),
			Category:        "A",
			Ratings:         fiveCriteria(),
		}
	}

	if errs := bv.ValidateRatingSubmit(base()); errs.HasErrors() {
		t.Fatalf("Expected valid batch, got %v", errs)
	}

	tests := []struct {
		name    string
		mutate  func(*SubmitRatingsRequest)
		message string
	}{
		{
			name: "too few criteria",
			mutate: func(r *SubmitRatingsRequest) {
				r.Ratings = r.Ratings[:4]
			},
			message: "exactly 5 criteria",
		},
		{
			name: "too many criteria",
			mutate: func(r *SubmitRatingsRequest) {
				r.Ratings = append(r.Ratings, models.CriteriaScore{Criteria: "extra", Score: 10})
			},
			message: "exactly 5 criteria",
		},
		{
			name: "duplicate criterion",
			mutate: func(r *SubmitRatingsRequest) {
				r.Ratings[1].Criteria = "creativity"
			},
			message: "duplicate criterion",
		},
		{
			name: "empty criterion name",
			mutate: func(r *SubmitRatingsRequest) {
				r.Ratings[2].Criteria = "   "
			},
			message: "cannot be empty",
		},
		{
			name: "score above ceiling",
			mutate: func(r *SubmitRatingsRequest) {
				r.Ratings[0].Score = 21
			},
			message: "between 0 and 20",
		},
		{
			name: "negative score",
			mutate: func(r *SubmitRatingsRequest) {
				r.Ratings[0].Score = -1
			},
			message: "between 0 and 20",
		},
		{
			name: "invalid category",
			mutate: func(r *SubmitRatingsRequest) {
				r.Category = "C"
			},
		},
		{
			name: "missing evaluated user",
			mutate: func(r *SubmitRatingsRequest) {
				r.EvaluatedUserID = uuid.Nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)

			errs := bv.ValidateRatingSubmit(req)
			if !errs.HasErrors() {
				t.Fatal("Expected validation errors")
			}
			if tt.message != "" && !strings.Contains(errs.Error(), tt.message) {
				t.Errorf("Expected message containing %q, got %q", tt.message, errs.Error())
			}
		})
	}
}

func TestValidateImageUpload(t *testing.T) {
	bv := New()
	maxSize := int64(10 << 20)

	tests := []struct {
		name        string
		contentType string
		size        int64
		subcategory string
		wantErrors  bool
	}{
		{"valid jpeg", "image/jpeg", 1024, "A", false},
		{"content type is case insensitive", "IMAGE/JPEG", 1024, "B", false},
		{"png rejected", "image/png", 1024, "A", true},
		{"pdf rejected", "application/pdf", 1024, "A", true},
		{"empty file", "image/jpeg", 0, "A", true},
		{"oversized file", "image/jpeg", maxSize + 1, "A", true},
		{"at the size limit", "image/jpeg", maxSize, "A", false},
		{"invalid subcategory", "image/jpeg", 1024, "C", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateImageUpload(tt.contentType, tt.size, tt.subcategory, maxSize)
			if errs.HasErrors() != tt.wantErrors {
				t.Errorf("ValidateImageUpload(%q, %d, %q) errors = %v, want errors %v",
					tt.contentType, tt.size, tt.subcategory, errs, tt.wantErrors)
			}
		})
	}
}

func TestValidateUserDocument(t *testing.T) {
	bv := New()
	maxSize := int64(10 << 20)

	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErrors  bool
	}{
		{"valid pdf", "application/pdf", 2048, false},
		{"content type is case insensitive", "APPLICATION/PDF", 2048, false},
		{"jpeg rejected", "image/jpeg", 2048, true},
		{"empty file", "application/pdf", 0, true},
		{"oversized file", "application/pdf", maxSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateUserDocument(tt.contentType, tt.size, maxSize)
			if errs.HasErrors() != tt.wantErrors {
				t.Errorf("ValidateUserDocument(%q, %d) errors = %v, want errors %v",
					tt.contentType, tt.size, errs, tt.wantErrors)
			}
		})
	}
}

func TestCustomRules(t *testing.T) {
	bv := New()

	t.Run("user_type", func(t *testing.T) {
		type payload struct {
			UserType models.UserType `validate:"user_type"`
		}
		if errs := bv.Validate(payload{UserType: models.UserTypeEvaluator}); errs.HasErrors() {
			t.Errorf("Expected evaluator type to pass, got %v", errs)
		}
		if errs := bv.Validate(payload{UserType: models.UserTypeParticipant}); errs.HasErrors() {
			t.Errorf("Expected participant type to pass, got %v", errs)
		}
		if errs := bv.Validate(payload{UserType: "X"}); !errs.HasErrors() {
			t.Error("Expected unknown user type to fail")
		}
	})

	t.Run("enrollment_category", func(t *testing.T) {
		type payload struct {
			Category string `validate:"enrollment_category"`
		}
		for _, tier := range []string{"1", "2", "3", "4", "5"} {
			if errs := bv.Validate(payload{Category: tier}); errs.HasErrors() {
				t.Errorf("Expected tier %q to pass, got %v", tier, errs)
			}
		}
		for _, tier := range []string{"0", "6", "A", ""} {
			if errs := bv.Validate(payload{Category: tier}); !errs.HasErrors() {
				t.Errorf("Expected tier %q to fail", tier)
			}
		}
	})

	t.Run("contest_category", func(t *testing.T) {
		type payload struct {
			Category string `validate:"contest_category"`
		}
		if errs := bv.Validate(payload{Category: "A"}); errs.HasErrors() {
			t.Errorf("Expected category A to pass, got %v", errs)
		}
		if errs := bv.Validate(payload{Category: "B"}); errs.HasErrors() {
			t.Errorf("Expected category B to pass, got %v", errs)
		}
		if errs := bv.Validate(payload{Category: "1"}); !errs.HasErrors() {
			t.Error("Expected enrollment tier to fail the contest category rule")
		}
	})

	t.Run("legacy_score_range", func(t *testing.T) {
		type payload struct {
			Rating int `validate:"legacy_score_range"`
		}
		for _, score := range []int{0, 5, 10} {
			if errs := bv.Validate(payload{Rating: score}); errs.HasErrors() {
				t.Errorf("Expected score %d to pass, got %v", score, errs)
			}
		}
		for _, score := range []int{-1, 11} {
			if errs := bv.Validate(payload{Rating: score}); !errs.HasErrors() {
				t.Errorf("Expected score %d to fail", score)
			}
		}
	})
}
