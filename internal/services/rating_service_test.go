package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/events"
	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/validator"
)

func newRatingTestService(repo *mockRepository) (RatingService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewRatingService(repo, nil, logger, validator.New(), publisher), publisher
}

func fullBatch() []models.CriteriaScore {
	return []models.CriteriaScore{
		{Criteria: "creativity", Score: 18},
		{Criteria: "technique", Score: 15},
		{Criteria: "composition", Score: 20},
		{Criteria: "originality", Score: 12},
		{Criteria: "impact", Score: 17},
	}
}

func TestRatingService_SubmitRatings(t *testing.T) {
	repo := newMockRepository()
	service, publisher := newRatingTestService(repo)
	ctx := context.Background()

	evaluator := repo.addUser(&models.User{Name: "Jury", Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	participant := repo.addUser(&models.User{Name: "Artist", Email: "artist@example.com", Document: "222", UserType: models.UserTypeParticipant})

	req := &SubmitRatingsRequest{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "A",
		Ratings:         fullBatch(),
	}

	if err := service.SubmitRatings(ctx, req); err != nil {
		t.Fatalf("SubmitRatings failed: %v", err)
	}

	key := repositories.RatingKey{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "A",
	}
	resp, err := service.GetRatings(ctx, key)
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(resp.Ratings) != 5 {
		t.Fatalf("Expected 5 stored criteria, got %d", len(resp.Ratings))
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(published))
	}
	if published[0].Type != events.EventRatingSubmitted {
		t.Errorf("Expected event type %q, got %q", events.EventRatingSubmitted, published[0].Type)
	}
}

func TestRatingService_SubmitRatings_ResubmitUpdatesInPlace(t *testing.T) {
	repo := newMockRepository()
	service, _ := newRatingTestService(repo)
	ctx := context.Background()

	evaluator := repo.addUser(&models.User{Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	participant := repo.addUser(&models.User{Email: "artist@example.com", Document: "222", UserType: models.UserTypeParticipant})

	req := &SubmitRatingsRequest{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "B",
		Ratings:         fullBatch(),
	}
	if err := service.SubmitRatings(ctx, req); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	// Same key again with different scores: still 5 rows, new values.
	updated := fullBatch()
	for i := range updated {
		updated[i].Score = 10
	}
	req.Ratings = updated
	if err := service.SubmitRatings(ctx, req); err != nil {
		t.Fatalf("Resubmit failed: %v", err)
	}

	resp, err := service.GetRatings(ctx, repositories.RatingKey{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "B",
	})
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(resp.Ratings) != 5 {
		t.Fatalf("Expected 5 criteria after resubmit, got %d", len(resp.Ratings))
	}
	for _, cs := range resp.Ratings {
		if cs.Score != 10 {
			t.Errorf("Expected score 10 for %q, got %d", cs.Criteria, cs.Score)
		}
	}
}

func TestRatingService_SubmitRatings_BatchValidation(t *testing.T) {
	repo := newMockRepository()
	service, publisher := newRatingTestService(repo)
	ctx := context.Background()

	evaluator := repo.addUser(&models.User{Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	participant := repo.addUser(&models.User{Email: "artist@example.com", Document: "222", UserType: models.UserTypeParticipant})

	tests := []struct {
		name    string
		ratings []models.CriteriaScore
	}{
		{
			name:    "too few criteria",
			ratings: fullBatch()[:4],
		},
		{
			name: "too many criteria",
			ratings: append(fullBatch(), models.CriteriaScore{
				Criteria: "extra", Score: 5,
			}),
		},
		{
			name: "duplicate criterion",
			ratings: []models.CriteriaScore{
				{Criteria: "creativity", Score: 18},
				{Criteria: "creativity", Score: 15},
				{Criteria: "composition", Score: 20},
				{Criteria: "originality", Score: 12},
				{Criteria: "impact", Score: 17},
			},
		},
		{
			name: "score above maximum",
			ratings: []models.CriteriaScore{
				{Criteria: "creativity", Score: 21},
				{Criteria: "technique", Score: 15},
				{Criteria: "composition", Score: 20},
				{Criteria: "originality", Score: 12},
				{Criteria: "impact", Score: 17},
			},
		},
		{
			name: "negative score",
			ratings: []models.CriteriaScore{
				{Criteria: "creativity", Score: -1},
				{Criteria: "technique", Score: 15},
				{Criteria: "composition", Score: 20},
				{Criteria: "originality", Score: 12},
				{Criteria: "impact", Score: 17},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &SubmitRatingsRequest{
				EvaluatorID:     evaluator.ID,
				EvaluatedUserID: participant.ID,
				Category:        "A",
				Ratings:         tt.ratings,
			}
			err := service.SubmitRatings(ctx, req)
			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Fatalf("Expected validation errors, got %v", err)
			}
		})
	}

	// No partial writes and no events on rejected batches.
	count, _ := repo.Rating().CountByKey(ctx, nil, repositories.RatingKey{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "A",
	})
	if count != 0 {
		t.Errorf("Expected no stored ratings, got %d", count)
	}
	if got := len(publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("Expected no published events, got %d", got)
	}
}

func TestRatingService_SubmitRatings_Authorization(t *testing.T) {
	repo := newMockRepository()
	service, _ := newRatingTestService(repo)
	ctx := context.Background()

	evaluator := repo.addUser(&models.User{Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	participant := repo.addUser(&models.User{Email: "artist@example.com", Document: "222", UserType: models.UserTypeParticipant})

	t.Run("non-evaluator cannot submit", func(t *testing.T) {
		req := &SubmitRatingsRequest{
			EvaluatorID:     participant.ID,
			EvaluatedUserID: evaluator.ID,
			Category:        "A",
			Ratings:         fullBatch(),
		}
		err := service.SubmitRatings(ctx, req)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("self-evaluation is rejected", func(t *testing.T) {
		req := &SubmitRatingsRequest{
			EvaluatorID:     evaluator.ID,
			EvaluatedUserID: evaluator.ID,
			Category:        "A",
			Ratings:         fullBatch(),
		}
		err := service.SubmitRatings(ctx, req)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("unknown evaluated user", func(t *testing.T) {
		req := &SubmitRatingsRequest{
			EvaluatorID:     evaluator.ID,
			EvaluatedUserID: uuid.New(),
			Category:        "A",
			Ratings:         fullBatch(),
		}
		if err := service.SubmitRatings(ctx, req); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("Expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("unknown evaluator", func(t *testing.T) {
		req := &SubmitRatingsRequest{
			EvaluatorID:     uuid.New(),
			EvaluatedUserID: participant.ID,
			Category:        "A",
			Ratings:         fullBatch(),
		}
		if err := service.SubmitRatings(ctx, req); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("Expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestRatingService_OverwriteRatings(t *testing.T) {
	repo := newMockRepository()
	service, publisher := newRatingTestService(repo)
	ctx := context.Background()

	evaluator := repo.addUser(&models.User{Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	participant := repo.addUser(&models.User{Email: "artist@example.com", Document: "222", UserType: models.UserTypeParticipant})

	req := &SubmitRatingsRequest{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "A",
		Ratings:         fullBatch(),
	}
	if err := service.SubmitRatings(ctx, req); err != nil {
		t.Fatalf("SubmitRatings failed: %v", err)
	}

	// Overwrite with a batch naming different criteria: the old rows must go.
	req.Ratings = []models.CriteriaScore{
		{Criteria: "lighting", Score: 9},
		{Criteria: "focus", Score: 11},
		{Criteria: "story", Score: 14},
		{Criteria: "framing", Score: 16},
		{Criteria: "color", Score: 8},
	}
	if err := service.OverwriteRatings(ctx, req); err != nil {
		t.Fatalf("OverwriteRatings failed: %v", err)
	}

	resp, err := service.GetRatings(ctx, repositories.RatingKey{
		EvaluatorID:     evaluator.ID,
		EvaluatedUserID: participant.ID,
		Category:        "A",
	})
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(resp.Ratings) != 5 {
		t.Fatalf("Expected exactly 5 criteria after overwrite, got %d", len(resp.Ratings))
	}
	for _, cs := range resp.Ratings {
		if cs.Criteria == "creativity" || cs.Criteria == "technique" {
			t.Errorf("Old criterion %q survived the overwrite", cs.Criteria)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("Expected 2 published events, got %d", len(published))
	}
}

func TestRatingService_GetRatings_EmptyKey(t *testing.T) {
	repo := newMockRepository()
	service, _ := newRatingTestService(repo)

	resp, err := service.GetRatings(context.Background(), repositories.RatingKey{
		EvaluatorID:     uuid.New(),
		EvaluatedUserID: uuid.New(),
		Category:        "A",
	})
	if err != nil {
		t.Fatalf("Expected empty response without error, got %v", err)
	}
	if len(resp.Ratings) != 0 {
		t.Errorf("Expected empty batch, got %d rows", len(resp.Ratings))
	}
}

func TestRatingService_RateImage(t *testing.T) {
	repo := newMockRepository()
	service, _ := newRatingTestService(repo)
	ctx := context.Background()

	evaluator := repo.addUser(&models.User{Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	participant := repo.addUser(&models.User{Email: "artist@example.com", Document: "222", UserType: models.UserTypeParticipant})

	image := &models.Image{UserID: participant.ID, Subcategory: "A"}
	if err := repo.Image().Create(ctx, nil, image); err != nil {
		t.Fatalf("Failed to seed image: %v", err)
	}

	req := &RateImageRequest{ImageID: image.ID, UserID: evaluator.ID, Rating: 8}
	if err := service.RateImage(ctx, req); err != nil {
		t.Fatalf("RateImage failed: %v", err)
	}

	stored, err := service.GetImageRating(ctx, evaluator.ID, image.ID)
	if err != nil {
		t.Fatalf("GetImageRating failed: %v", err)
	}
	if stored.Rating != 8 {
		t.Errorf("Expected rating 8, got %d", stored.Rating)
	}

	// Re-rating replaces the score rather than adding a second row.
	req.Rating = 3
	if err := service.RateImage(ctx, req); err != nil {
		t.Fatalf("Second RateImage failed: %v", err)
	}
	stored, _ = service.GetImageRating(ctx, evaluator.ID, image.ID)
	if stored.Rating != 3 {
		t.Errorf("Expected replaced rating 3, got %d", stored.Rating)
	}

	t.Run("score above legacy maximum", func(t *testing.T) {
		bad := &RateImageRequest{ImageID: image.ID, UserID: evaluator.ID, Rating: 11}
		err := service.RateImage(ctx, bad)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("Expected validation errors, got %v", err)
		}
	})

	t.Run("unknown image", func(t *testing.T) {
		bad := &RateImageRequest{ImageID: uuid.New(), UserID: evaluator.ID, Rating: 5}
		if err := service.RateImage(ctx, bad); !errors.Is(err, ErrImageNotFound) {
			t.Fatalf("Expected ErrImageNotFound, got %v", err)
		}
	})

	t.Run("missing rating returns not found", func(t *testing.T) {
		if _, err := service.GetImageRating(ctx, evaluator.ID, uuid.New()); !errors.Is(err, ErrRatingNotFound) {
			t.Fatalf("Expected ErrRatingNotFound, got %v", err)
		}
	})
}

func TestRatingService_ListImageRatings(t *testing.T) {
	repo := newMockRepository()
	service, _ := newRatingTestService(repo)
	ctx := context.Background()

	judgeOne := repo.addUser(&models.User{Email: "jury@example.com", Document: "111", UserType: models.UserTypeEvaluator})
	judgeTwo := repo.addUser(&models.User{Email: "jury2@example.com", Document: "222", UserType: models.UserTypeEvaluator})
	artist := repo.addUser(&models.User{Email: "artist@example.com", Document: "333", UserType: models.UserTypeParticipant})
	rival := repo.addUser(&models.User{Email: "rival@example.com", Document: "444", UserType: models.UserTypeParticipant})

	seedImage := func(owner uuid.UUID, subcategory string) *models.Image {
		image := &models.Image{UserID: owner, Subcategory: subcategory}
		if err := repo.Image().Create(ctx, nil, image); err != nil {
			t.Fatalf("Failed to seed image: %v", err)
		}
		return image
	}
	rate := func(evaluator uuid.UUID, image *models.Image, score int) {
		req := &RateImageRequest{ImageID: image.ID, UserID: evaluator, Rating: score}
		if err := service.RateImage(ctx, req); err != nil {
			t.Fatalf("RateImage failed: %v", err)
		}
	}

	// The artist's B entries collect scores from both judges; the A entry
	// and the rival's B entry must stay out of the B mean.
	artistB := seedImage(artist.ID, "B")
	rate(judgeOne.ID, artistB, 6)
	rate(judgeTwo.ID, artistB, 9)
	rate(judgeOne.ID, seedImage(artist.ID, "A"), 10)
	rate(judgeOne.ID, seedImage(rival.ID, "B"), 2)

	resp, err := service.ListImageRatings(ctx, &ImageRatingQuery{UserID: artist.ID, Subcategory: "B"})
	if err != nil {
		t.Fatalf("ListImageRatings failed: %v", err)
	}
	if resp.UserID != artist.ID {
		t.Errorf("Expected response keyed on the rated user, got %s", resp.UserID)
	}
	if len(resp.Ratings) != 2 {
		t.Fatalf("Expected the 2 scores received in subcategory B, got %d", len(resp.Ratings))
	}
	if resp.Average == nil || *resp.Average != 7.5 {
		t.Fatalf("Expected received average 7.5, got %v", resp.Average)
	}

	t.Run("unrated subcategory has nil average", func(t *testing.T) {
		resp, err := service.ListImageRatings(ctx, &ImageRatingQuery{UserID: rival.ID, Subcategory: "A"})
		if err != nil {
			t.Fatalf("ListImageRatings failed: %v", err)
		}
		if len(resp.Ratings) != 0 {
			t.Errorf("Expected no ratings, got %d", len(resp.Ratings))
		}
		if resp.Average != nil {
			t.Errorf("Expected nil average, got %v", *resp.Average)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.ListImageRatings(ctx, &ImageRatingQuery{UserID: uuid.New(), Subcategory: "B"})
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("Expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("invalid subcategory", func(t *testing.T) {
		_, err := service.ListImageRatings(ctx, &ImageRatingQuery{UserID: artist.ID, Subcategory: "C"})
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("Expected validation errors, got %v", err)
		}
	})
}
