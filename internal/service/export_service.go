package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/stats"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/export"
	"github.com/noah-isme/chamada-api/pkg/storage"
)

const (
	headerEnrollment   = "Matrícula"
	headerName         = "Nome"
	headerCertificates = "Motivos de Atestados"
)

type certificateLister interface {
	ListByStudents(ctx context.Context, studentIDs []string) ([]models.Certificate, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(now time.Time, ttl time.Duration) ([]string, error)
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

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Classes      classFinder
	Students     studentLister
	Attendance   attendanceSnapshotter
	Certificates certificateLister
	Storage      fileStorage
	Signer       *storage.SignedURLSigner
	CSV          csvRenderer
	PDF          pdfRenderer
	Metrics      *MetricsService
	Logger       *zap.Logger
	Config       ExportConfig
}

// ExportService builds class attendance reports and persists rendered files.
type ExportService struct {
	classes      classFinder
	students     studentLister
	attendance   attendanceSnapshotter
	certificates certificateLister
	storage      fileStorage
	signer       *storage.SignedURLSigner
	csv          csvRenderer
	pdf          pdfRenderer
	metrics      *MetricsService
	logger       *zap.Logger
	now          func() time.Time
	cfg ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		classes:      params.Classes,
		students:     params.Students,
		attendance:   params.Attendance,
		certificates: params.Certificates,
		storage:      params.Storage,
		signer:       params.Signer,
		csv:          csv,
		pdf:          pdf,
		metrics:      params.Metrics,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// ClassReport renders the per-student monthly absence report of a class, stores
// it and returns a signed download link.
func (s *ExportService) ClassReport(ctx context.Context, req dto.ClassExportRequest) (*dto.ExportResult, error) {
	format := dto.ExportFormat(strings.ToLower(string(req.Format)))
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if req.Year < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year must be positive")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	report, err := s.buildReport(ctx, *class, req.Year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build class report")
	}
	dataset := ClassReportDataset(report)

	var payload []byte
	switch format {
	case dto.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, reportTitle(report))
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render class report")
	}

	id := uuid.NewString()
	fileName := reportFileName(report, format)
	relPath, err := s.storage.Save(path.Join(id, fileName), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store class report")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.metrics.RecordExport(string(format))
	s.logger.Info("class report generated",
		zap.String("export_id", id),
		zap.String("class_id", class.ID),
		zap.String("format", string(format)),
		zap.Int("rows", len(report.Rows)),
	)
	return &dto.ExportResult{
		ID:        id,
		FileName:  fileName,
		Format:    string(format),
		URL:       fmt.Sprintf("%s/exports/download/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open validates a download token and returns the stored file with its name.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, path.Base(relPath), nil
}

// Cleanup removes stored reports older than the configured TTL.
func (s *ExportService) Cleanup(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := s.storage.CleanupOlderThan(s.now(), s.cfg.ResultTTL)
	if err != nil {
		return 0, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return len(removed), nil
}

func (s *ExportService) buildReport(ctx context.Context, class models.Class, year int) (dto.ClassReport, error) {
	students, err := s.students.List(ctx, models.StudentFilter{ClassID: class.ID})
	if err != nil {
		return dto.ClassReport{}, err
	}
	scope := models.AttendanceScope{ClassID: class.ID}
	if year > 0 {
		from := models.NewDate(year, time.January, 1)
		to := models.NewDate(year, time.December, 31)
		scope.From, scope.To = &from, &to
	}
	records, err := s.attendance.Snapshot(ctx, scope)
	if err != nil {
		return dto.ClassReport{}, err
	}
	ids := make([]string, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	certificates, err := s.certificates.ListByStudents(ctx, ids)
	if err != nil {
		return dto.ClassReport{}, err
	}
	return stats.ClassReport(class, students, records, certificates, year), nil
}

// ClassReportDataset flattens a class report into export columns: enrollment,
// name, one column per month and the certificate reasons.
func ClassReportDataset(report dto.ClassReport) export.Dataset {
	headers := make([]string, 0, 15)
	headers = append(headers, headerEnrollment, headerName)
	headers = append(headers, stats.MonthNames[:]...)
	headers = append(headers, headerCertificates)

	rows := make([]map[string]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		row := map[string]string{
			headerEnrollment:   r.Enrollment,
			headerName:         r.StudentName,
			headerCertificates: r.Certificates,
		}
		for i, month := range stats.MonthNames {
			row[month] = strconv.Itoa(r.MonthlyAbsences[i])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func reportTitle(report dto.ClassReport) string {
	if report.Year > 0 {
		return fmt.Sprintf("Relatório de Faltas - %s (%d)", report.ClassName, report.Year)
	}
	return fmt.Sprintf("Relatório de Faltas - %s", report.ClassName)
}

func reportFileName(report dto.ClassReport, format dto.ExportFormat) string {
	period := "geral"
	if report.Year > 0 {
		period = strconv.Itoa(report.Year)
	}
	return fmt.Sprintf("relatorio_faltas_%s_%s.%s", sanitizeFilename(report.ClassName), period, format)
}

const maxFilenameBytes = 100

func sanitizeFilename(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "turma"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "º", "", "ª", "")
	result := strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
	if len(result) <= maxFilenameBytes {
		return result
	}
	cut := maxFilenameBytes
	for cut > 0 && !utf8.RuneStart(result[cut]) {
		cut--
	}
	return result[:cut]
}
