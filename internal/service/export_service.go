package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
	"github.com/noah-isme/smart-attendance-cli/pkg/export"
	"github.com/noah-isme/smart-attendance-cli/pkg/storage"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportService renders a session's reconciled records to a file on disk.
type ExportService struct {
	records *RecordService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage *storage.LocalStorage
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(records *RecordService, store *storage.LocalStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		records: records,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: store,
		logger:  logger,
	}
}

// Export fetches the session's records and writes the rendered summary,
// returning the path written.
func (s *ExportService) Export(ctx context.Context, sessionID int64, format ExportFormat, filename string) (string, error) {
	fetched, err := s.records.Fetch(ctx, &sessionID)
	if err != nil {
		return "", err
	}

	dataset := buildDataset(fetched, s.records)
	summary := models.Summarize(fetched)
	subtitle := fmt.Sprintf("present %d / absent %d / late %d / unknown %d",
		summary.Present, summary.Absent, summary.Late, summary.Unknown)

	if filename == "" {
		filename = fmt.Sprintf("attendance-session-%d.%s", sessionID, format)
	}

	var rendered []byte
	switch format {
	case FormatCSV:
		rendered, err = s.csv.Render(dataset)
	case FormatPDF:
		rendered, err = s.pdf.Render(dataset, fmt.Sprintf("Attendance Session %d", sessionID), subtitle)
	default:
		return "", appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return "", err
	}

	path, err := s.storage.Save(filename, rendered)
	if err != nil {
		return "", err
	}

	s.logger.Info("session export written",
		zap.Int64("session_id", sessionID),
		zap.String("format", string(format)),
		zap.String("path", path))
	return path, nil
}

func buildDataset(records []models.AttendanceRecord, resolver *RecordService) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Record", "Student", "Status", "Confidence", "Snapshot"},
	}
	for _, r := range records {
		student := "Unidentified"
		if r.StudentName != nil && *r.StudentName != "" {
			student = *r.StudentName
		} else if r.StudentID != nil {
			student = strconv.FormatInt(*r.StudentID, 10)
		}

		confidence := ""
		if r.Confidence != nil {
			confidence = strconv.FormatFloat(*r.Confidence, 'f', 4, 64)
		}

		snapshot := ""
		if r.SnapshotURL != nil {
			snapshot = resolver.ResolveSnapshotURL(*r.SnapshotURL)
		}

		dataset.Rows = append(dataset.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			student,
			string(r.DisplayStatus()),
			confidence,
			snapshot,
		})
	}
	return dataset
}
