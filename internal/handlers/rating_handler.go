package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/services"
	"github.com/foto-parana/contest-service/internal/utils"
	"github.com/foto-parana/contest-service/internal/validator"
)

type RatingHandler struct {
	BaseHandler
	ratingService services.RatingService
	validator     *validator.Validator
}

func NewRatingHandler(
	ratingService services.RatingService,
	validator *validator.Validator,
	logger utils.Logger,
) *RatingHandler {
	return &RatingHandler{
		BaseHandler:   NewBaseHandler(logger),
		ratingService: ratingService,
		validator:     validator,
	}
}

// SubmitRatings stores one criteria batch for a user in a category
// @Summary Submit ratings
// @Description Stores the full criteria batch; resubmitting the same key updates scores in place
// @Tags ratings
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /ratings [post]
func (h *RatingHandler) SubmitRatings(c *gin.Context) {
	req, ok := h.bindRatingsRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting ratings",
		"evaluator_id", req.EvaluatorID,
		"evaluated_user_id", req.EvaluatedUserID,
		"category", req.Category)

	if err := h.ratingService.SubmitRatings(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Ratings submitted"})
}

// OverwriteRatings replaces the stored batch for a key
// @Summary Overwrite ratings
// @Description Deletes every previous score for the key and stores the new batch
// @Tags ratings
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /ratings/overwrite [put]
func (h *RatingHandler) OverwriteRatings(c *gin.Context) {
	req, ok := h.bindRatingsRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Overwriting ratings",
		"evaluator_id", req.EvaluatorID,
		"evaluated_user_id", req.EvaluatedUserID,
		"category", req.Category)

	if err := h.ratingService.OverwriteRatings(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Ratings overwritten"})
}

// GetRatings returns the per-criteria detail for one evaluator/user/category key
// @Summary Get ratings
// @Tags ratings
// @Produce json
// @Success 200 {object} services.RatingsResponse
// @Failure 400 {object} ErrorResponse
// @Router /ratings [get]
func (h *RatingHandler) GetRatings(c *gin.Context) {
	evaluatorID, err := uuid.Parse(c.Query("evaluator_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid evaluator_id parameter",
			Details: "must be a valid UUID",
		})
		return
	}

	evaluatedUserID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid user_id parameter",
			Details: "must be a valid UUID",
		})
		return
	}

	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing category parameter",
		})
		return
	}

	h.LogRequest(c, "Getting ratings",
		"evaluator_id", evaluatorID,
		"evaluated_user_id", evaluatedUserID,
		"category", category)

	resp, err := h.ratingService.GetRatings(c.Request.Context(), repositories.RatingKey{
		EvaluatorID:     evaluatorID,
		EvaluatedUserID: evaluatedUserID,
		Category:        category,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RateImage stores one flat score on an image
// @Summary Rate image
// @Tags ratings
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /images/{id}/rate [post]
func (h *RatingHandler) RateImage(c *gin.Context) {
	imageID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	evaluatorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req services.RateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.ImageID = imageID
	req.UserID = evaluatorID

	h.LogRequest(c, "Rating image", "image_id", imageID, "evaluator_id", evaluatorID)

	if err := h.ratingService.RateImage(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Image rated"})
}

// GetImageRating returns the authenticated evaluator's score on an image
// @Summary Get image rating
// @Tags ratings
// @Produce json
// @Success 200 {object} models.ImageRating
// @Failure 404 {object} ErrorResponse
// @Router /images/{id}/rate [get]
func (h *RatingHandler) GetImageRating(c *gin.Context) {
	imageID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	evaluatorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Getting image rating", "image_id", imageID, "evaluator_id", evaluatorID)

	rating, err := h.ratingService.GetImageRating(c.Request.Context(), evaluatorID, imageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

// ListImageRatings lists the scores a user's images received in one
// subcategory with their mean
// @Summary List image ratings received by a user
// @Tags ratings
// @Produce json
// @Success 200 {object} services.ImageRatingsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /images/ratings [get]
func (h *RatingHandler) ListImageRatings(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid user_id parameter",
			Details: "must be a valid UUID",
		})
		return
	}

	req := services.ImageRatingQuery{
		UserID:      userID,
		Subcategory: c.Query("subcategory"),
	}

	h.LogRequest(c, "Listing image ratings",
		"user_id", userID, "subcategory", req.Subcategory)

	resp, err := h.ratingService.ListImageRatings(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) bindRatingsRequest(c *gin.Context) (*services.SubmitRatingsRequest, bool) {
	var req services.SubmitRatingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, false
	}

	// The token identifies the evaluator; the body may not impersonate
	// someone else.
	evaluatorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil, false
	}
	req.EvaluatorID = evaluatorID

	return &req, true
}

// ===== ERROR HANDLING =====

func (h *RatingHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	var permissionErr *services.PermissionError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs.Error(),
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
			Details: permissionErr.Reason,
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrImageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Image not found",
		})
	case errors.Is(err, services.ErrRatingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Rating not found",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
