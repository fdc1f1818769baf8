package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gnegDev/path/internal/repository"
)

// Service is a tiny façade over the document repository that produces
// XLSX bytes for exports.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportDocumentsXLSX returns an XLSX workbook (as bytes) listing all of
// an owner's documents with their extracted patient summary.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, owner string) ([]byte, error) {
	start := time.Now()

	docs, err := s.docs.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Uploaded",
		"Medical History File",
		"Treatment Plan File",
		"Status",
		"Patient Initials",
		"Date of Birth",
		"Primary Diagnosis",
		"Stage",
		"Subtype",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	row := 2
	for _, d := range docs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, d.CreatedAt.Format("2006-01-02 15:04"))
		write(2, d.MedicalHistoryFilename)
		write(3, str(d.TreatmentPlanFilename))
		write(4, string(d.Status))
		if ed := d.ExtractedData; ed != nil {
			write(5, str(ed.FioInitials))
			write(6, str(ed.DateOfBirth))
			write(7, str(ed.DiagnosisPrimary))
			write(8, str(ed.Stage))
			write(9, str(ed.Subtype))
		}
		write(10, str(d.ErrorMessage))
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.documents.ok",
		"owner", owner,
		"rows", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
