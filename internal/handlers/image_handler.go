package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/repositories"
	"github.com/foto-parana/contest-service/internal/services"
	"github.com/foto-parana/contest-service/internal/utils"
	"github.com/foto-parana/contest-service/internal/validator"
)

type ImageHandler struct {
	BaseHandler
	imageService services.ImageService
	validator    *validator.Validator
}

func NewImageHandler(
	imageService services.ImageService,
	validator *validator.Validator,
	logger utils.Logger,
) *ImageHandler {
	return &ImageHandler{
		BaseHandler:  NewBaseHandler(logger),
		imageService: imageService,
		validator:    validator,
	}
}

// UploadImage stores a contest entry for the authenticated user
// @Summary Upload image
// @Description Uploads a JPEG entry into a contest category, subject to the per-category quota
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.ImageOut
// @Failure 400 {object} ErrorResponse
// @Router /images [post]
func (h *ImageHandler) UploadImage(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Image file is required",
			Details: "attach a JPEG file under the 'file' field",
		})
		return
	}

	file, err := readFormFile(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read uploaded image",
			Details: err.Error(),
		})
		return
	}

	req := &services.ImageUploadRequest{
		File:        *file,
		Subcategory: c.PostForm("subcategory"),
		Title:       c.PostForm("title"),
		Place:       c.PostForm("place"),
		Description: c.PostForm("description"),
	}

	if equipmentJSON := c.PostForm("equipment"); equipmentJSON != "" {
		if err := json.Unmarshal([]byte(equipmentJSON), &req.Equipment); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid equipment payload",
				Details: "must be a JSON object",
			})
			return
		}
	}

	h.LogRequest(c, "Uploading image", "user_id", userID, "subcategory", req.Subcategory)

	out, err := h.imageService.Upload(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// GetImage returns entry metadata without the binary
// @Summary Get image details
// @Tags images
// @Produce json
// @Success 200 {object} models.ImageDetails
// @Failure 404 {object} ErrorResponse
// @Router /images/{id} [get]
func (h *ImageHandler) GetImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting image", "image_id", id)

	details, err := h.imageService.GetDetails(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// GetImageData streams the stored JPEG
// @Summary Get image binary
// @Tags images
// @Produce image/jpeg
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /images/{id}/data [get]
func (h *ImageHandler) GetImageData(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting image data", "image_id", id)

	image, err := h.imageService.GetData(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, image.ContentType, image.Data)
}

// UpdateImage patches entry metadata and optionally replaces the binary
// @Summary Update image
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} models.ImageDetails
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /images/{id} [put]
func (h *ImageHandler) UpdateImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req services.UpdateImageRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	var file *services.FileUpload
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err = readFormFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Failed to read uploaded image",
				Details: err.Error(),
			})
			return
		}
	}

	h.LogRequest(c, "Updating image", "image_id", id, "user_id", userID)

	details, err := h.imageService.Update(c.Request.Context(), id, &req, file, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// DeleteImage removes an entry
// @Summary Delete image
// @Tags images
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /images/{id} [delete]
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Deleting image", "image_id", id, "user_id", userID)

	if err := h.imageService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListImages lists entries with optional filters
// @Summary List images
// @Tags images
// @Produce json
// @Success 200 {object} services.ImageListResponse
// @Router /images [get]
func (h *ImageHandler) ListImages(c *gin.Context) {
	h.LogRequest(c, "Listing images")

	filters := repositories.ImageFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if subcategory := c.Query("subcategory"); subcategory != "" {
		filters.Subcategory = &subcategory
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid user_id parameter",
				Details: "must be a valid UUID",
			})
			return
		}
		filters.UserID = &userID
	}

	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 {
		if limit > 100 {
			limit = 100
		}
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset >= 0 {
		filters.Offset = offset
	}

	resp, err := h.imageService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUserImages lists a user's entries
// @Summary List a user's images
// @Tags images
// @Produce json
// @Success 200 {array} models.ImageOut
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/images [get]
func (h *ImageHandler) GetUserImages(c *gin.Context) {
	userID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Listing user images", "user_id", userID)

	images, err := h.imageService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, images)
}

// ===== ERROR HANDLING =====

func (h *ImageHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	var businessErr *services.BusinessRuleError
	var permissionErr *services.PermissionError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs.Error(),
		})
	// Quota exhaustion is a plain bad request, same as the other upload
	// constraint violations.
	case errors.As(err, &businessErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: businessErr.Message,
			Details: businessErr.Rule,
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
			Details: permissionErr.Reason,
		})
	case errors.Is(err, services.ErrImageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Image not found",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
