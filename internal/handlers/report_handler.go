package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foto-parana/contest-service/internal/services"
	"github.com/foto-parana/contest-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GetUserMedia returns every user with per-category score averages
// @Summary User media report
// @Description Lists all users with the average of scores received per contest category
// @Tags reports
// @Produce json
// @Success 200 {array} models.UserMediaRow
// @Failure 500 {object} ErrorResponse
// @Router /reports/user-media [get]
func (h *ReportHandler) GetUserMedia(c *gin.Context) {
	h.LogRequest(c, "Getting user media report")

	rows, err := h.reportService.UserMedia(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ExportUserMedia downloads the averages report as an XLSX workbook
// @Summary Export user media report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /reports/user-media/export [get]
func (h *ReportHandler) ExportUserMedia(c *gin.Context) {
	h.LogRequest(c, "Exporting user media report")

	data, filename, err := h.reportService.ExportUserMedia(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetUserCategoryAverage returns one user's mean score inside a category
// @Summary Per-user category average
// @Tags reports
// @Produce json
// @Param id path string true "User ID"
// @Param category query string true "Contest category (A or B)"
// @Success 200 {object} services.UserCategoryAverageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/users/{id}/average [get]
func (h *ReportHandler) GetUserCategoryAverage(c *gin.Context) {
	userID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting user category average", "user_id", userID)

	resp, err := h.reportService.UserCategoryAverage(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== ERROR HANDLING =====

func (h *ReportHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs.Error(),
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
