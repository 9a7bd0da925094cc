package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

type certificateRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error)
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	Create(ctx context.Context, certificate *models.Certificate) error
	Update(ctx context.Context, certificate *models.Certificate) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CertificateService manages the medical certificates attached to students.
type CertificateService struct {
	repo      certificateRepository
	students  studentFinder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(repo certificateRepository, students studentFinder, validate *validator.Validate, logger *zap.Logger) *CertificateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CertificateService{repo: repo, students: students, validator: validate, logger: logger, now: time.Now}
	registerCertificateValidations(svc.validator)
	return svc
}

func registerCertificateValidations(v *validator.Validate) {
	registerDateType(v)
	v.RegisterValidation("certificate_status", func(fl validator.FieldLevel) bool {
		return validCertificateStatus(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(dto.CreateCertificateRequest)
		if !req.StartDate.IsZero() && req.EndDate.Before(req.StartDate) {
			sl.ReportError(req.EndDate, "EndDate", "data_fim", "gtefield", "StartDate")
		}
	}, dto.CreateCertificateRequest{})
}

func validCertificateStatus(status string) bool {
	switch status {
	case models.CertificateStatusPending, models.CertificateStatusApproved, models.CertificateStatusRejected:
		return true
	}
	return false
}

// ListByStudent returns the student's certificates, newest first.
func (s *CertificateService) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	return rows, nil
}

// Create stores a pending certificate for the student.
func (s *CertificateService) Create(ctx context.Context, studentID string, req dto.CreateCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}

	certificate := &models.Certificate{
		StudentID:   studentID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
		Status:      models.CertificateStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, certificate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create certificate")
	}
	s.logger.Info("certificate created",
		zap.String("certificate_id", certificate.ID),
		zap.String("student_id", studentID),
		zap.String("user_id", actor.UserID()),
	)
	return certificate, nil
}

// Update applies the provided fields. The resulting range must still end on or
// after its start.
func (s *CertificateService) Update(ctx context.Context, id string, req dto.UpdateCertificateRequest, actor *models.JWTClaims) (*models.Certificate, error) {
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "descricao must not be empty")
		}
		req.Description = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	certificate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	if req.StartDate != nil && !req.StartDate.IsZero() {
		certificate.StartDate = *req.StartDate
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		certificate.EndDate = *req.EndDate
	}
	if req.Description != nil {
		certificate.Description = *req.Description
	}
	if req.Status != nil {
		certificate.Status = *req.Status
	}
	if certificate.EndDate.Before(certificate.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "data_fim must not be before data_inicio")
	}

	if err := s.repo.Update(ctx, certificate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update certificate")
	}
	s.logger.Info("certificate updated",
		zap.String("certificate_id", id),
		zap.String("status", certificate.Status),
		zap.String("user_id", actor.UserID()),
	)
	return certificate, nil
}

func (s *CertificateService) ensureStudent(ctx context.Context, studentID string) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return nil
}
