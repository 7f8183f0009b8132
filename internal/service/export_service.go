package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acme/timetable-scheduler/internal/scheduler"
	"github.com/acme/timetable-scheduler/pkg/export"
	"github.com/acme/timetable-scheduler/pkg/storage"
)

// ExportFormat selects the rendering for a downloaded timetable.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders a generated timetable's FormattedView as a
// downloadable CSV or PDF and hands back a signed, time-limited URL.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(fs fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage: fs,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders a timetable in the requested format and persists it to storage.
func (s *ExportService) Generate(ctx context.Context, timetable scheduler.Timetable, format ExportFormat) (*ExportResult, error) {
	dataset, title := buildDataset(timetable)

	var payload []byte
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported export format %s", format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(timetable, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(string(timetable.ID), relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/timetables/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (timetableID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(timetable scheduler.Timetable, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	departmentPart := sanitizeFilename(string(timetable.DepartmentID))
	return fmt.Sprintf("%s_%s_%s_%s.%s", departmentPart, timetable.Year, timetable.AcademicYear, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// buildDataset flattens a timetable's FormattedView into rows of
// time_slot x day text, one row per slot, matching the grid the Main
// and per-batch sheets render in the app.
func buildDataset(timetable scheduler.Timetable) (export.Dataset, string) {
	days := gridDays(timetable)
	slots := gridSlots(timetable)

	headers := make([]string, 0, len(days)+1)
	headers = append(headers, "Time")
	for _, day := range days {
		headers = append(headers, string(day))
	}

	rows := make([]map[string]string, 0, len(slots))
	for _, slotStart := range slots {
		row := map[string]string{"Time": slotStart}
		byDay := timetable.Formatted[slotStart]
		for _, day := range days {
			row[string(day)] = byDay[day]
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("%s Timetable - %s (%s)", timetable.Year, timetable.DepartmentID, timetable.AcademicYear)
	return export.Dataset{Headers: headers, Rows: rows}, title
}

func gridDays(timetable scheduler.Timetable) []scheduler.Day {
	if timetable.Main != nil {
		return timetable.Main.Shape.Days
	}
	return nil
}

func gridSlots(timetable scheduler.Timetable) []string {
	if timetable.Main == nil {
		return nil
	}
	slots := make([]string, len(timetable.Main.Shape.TimeSlots))
	for i, slot := range timetable.Main.Shape.TimeSlots {
		slots[i] = slot.Start
	}
	return slots
}
