package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/pkg/export"
	"github.com/noah-isme/classtrack-api/pkg/storage"
)

type weeklySummaryExportSource interface {
	List(ctx context.Context, filter models.WeeklySummaryFilter) ([]models.WeeklySummary, int, error)
}

type monthlySummaryExportSource interface {
	List(ctx context.Context, filter models.MonthlySummaryFilter) ([]models.MonthlySummary, int, error)
}

type violationExportSource interface {
	List(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, int, error)
}

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
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	weeklies   weeklySummaryExportSource
	monthlies  monthlySummaryExportSource
	violations violationExportSource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(
	weeklies weeklySummaryExportSource,
	monthlies monthlySummaryExportSource,
	violations violationExportSource,
	fileStore fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
	csv csvRenderer,
	pdf pdfRenderer,
) *ExportService {
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
		weeklies:   weeklies,
		monthlies:  monthlies,
		violations: violations,
		storage:    fileStore,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset according to the job definition and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
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

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := job.Params.WeekID
	if scope == "" && job.Params.Month > 0 {
		scope = fmt.Sprintf("%04d-%02d", job.Params.Year, job.Params.Month)
	}
	name := fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), sanitizeFilename(scope), timestamp, job.Params.Format)
	return name
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

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeWeeklySummary:
		return s.buildWeeklyDataset(ctx, job.Params)
	case models.ReportTypeMonthlySummary:
		return s.buildMonthlyDataset(ctx, job.Params)
	case models.ReportTypeViolations:
		return s.buildViolationDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildWeeklyDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, _, err := s.weeklies.List(ctx, models.WeeklySummaryFilter{
		WeekID:   params.WeekID,
		ClassID:  deref(params.ClassID),
		PageSize: 100,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Class ID":       row.ClassID,
			"Conduct":        fmt.Sprintf("%d", row.ConductTotal),
			"Academic":       fmt.Sprintf("%.2f", row.AcademicTotal),
			"Bonus":          fmt.Sprintf("%d", row.BonusTotal),
			"Penalty":        fmt.Sprintf("%d", row.PenaltyTotal),
			"Total":          fmt.Sprintf("%d", row.TotalScore),
			"Percentage (%)": fmt.Sprintf("%d", row.Percentage),
			"Flag":           string(row.Flag),
			"Status":         string(row.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Class ID", "Conduct", "Academic", "Bonus", "Penalty", "Total", "Percentage (%)", "Flag", "Status"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Weekly Summary %s", params.WeekID)
	return dataset, title, nil
}

func (s *ExportService) buildMonthlyDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, _, err := s.monthlies.List(ctx, models.MonthlySummaryFilter{
		SchoolYearID: params.SchoolYearID,
		ClassID:      deref(params.ClassID),
		Month:        params.Month,
		Year:         params.Year,
		PageSize:     100,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Class ID": row.ClassID,
			"Month":    fmt.Sprintf("%02d/%d", row.Month, row.Year),
			"Weeks":    fmt.Sprintf("%d", row.WeekCount),
			"Conduct":  fmt.Sprintf("%.2f", row.Details.Conduct.Total),
			"Academic": fmt.Sprintf("%.2f", row.Details.Academic.Total),
			"Bonus":    fmt.Sprintf("%d", row.Details.Bonus.Total),
			"Total":    fmt.Sprintf("%.2f", row.TotalScore),
			"Flag":     string(row.Flag),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Class ID", "Month", "Weeks", "Conduct", "Academic", "Bonus", "Total", "Flag"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Monthly Summary %02d/%d", params.Month, params.Year)
	return dataset, title, nil
}

func (s *ExportService) buildViolationDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, _, err := s.violations.List(ctx, models.ViolationFilter{
		WeekID:   params.WeekID,
		ClassID:  deref(params.ClassID),
		PageSize: 100,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Date":      row.Date.Format("2006-01-02"),
			"Student":   row.StudentName,
			"Violation": row.ViolationTypeName,
			"Severity":  string(row.Severity),
			"Penalty":   fmt.Sprintf("%d", row.DefaultPenalty),
			"Status":    string(row.Status),
			"Duplicate": fmt.Sprintf("%t", row.IsDuplicate),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Student", "Violation", "Severity", "Penalty", "Status", "Duplicate"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Violations %s", params.WeekID)
	return dataset, title, nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
