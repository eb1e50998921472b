package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// UserMedia lists every registered user with the averages of all scores
// received per contest category. Users nobody scored yet appear with nil
// averages.
func (s *reportService) UserMedia(ctx context.Context) ([]*models.UserMediaRow, error) {
	rows, err := s.repo.Report().UserMediaAverages(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user media report: %w", err)
	}
	return rows, nil
}

// ExportUserMedia renders the averages report as an XLSX workbook and
// returns the bytes plus the suggested filename.
func (s *reportService) ExportUserMedia(ctx context.Context) ([]byte, string, error) {
	rows, err := s.UserMedia(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close report workbook", "error", err)
		}
	}()

	const sheet = "User Media"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create report sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Name", "Category", "Address", "Categoria A Media", "Categoria B Media"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write report header: %w", err)
		}
	}

	for rowIdx, row := range rows {
		values := []interface{}{
			row.Name,
			row.UserCategory,
			row.CompleteAddress,
			averageCell(row.CategoriaAMedia),
			averageCell(row.CategoriaBMedia),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write report row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize report: %w", err)
	}

	s.logger.Info("User media report exported", "rows", len(rows))

	return buf.Bytes(), "user_media_report.xlsx", nil
}

// UserCategoryAverage returns the mean score one user earned in a contest
// category, nil when the user has no ratings there.
func (s *reportService) UserCategoryAverage(ctx context.Context, userID uuid.UUID, category string) (*UserCategoryAverageResponse, error) {
	if !models.ContestCategory(category).Valid() {
		return nil, NewValidationError("category", "category must be A or B", category)
	}

	exists, err := s.repo.User().ExistsByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	avg, err := s.repo.Report().CategoryAverage(ctx, nil, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category average: %w", err)
	}

	return &UserCategoryAverageResponse{
		UserID:   userID,
		Category: category,
		Average:  avg,
	}, nil
}

// averageCell keeps unrated categories visibly empty in the export.
func averageCell(avg *float64) interface{} {
	if avg == nil {
		return ""
	}
	return *avg
}
