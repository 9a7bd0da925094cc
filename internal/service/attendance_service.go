package service

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	RollCall(ctx context.Context, classID string, date models.Date) ([]models.AttendanceRecord, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	BulkInsert(ctx context.Context, records []*models.Attendance, atomic bool) ([]*models.Attendance, error)
	UpdateStatus(ctx context.Context, id string, present, excused bool, reason *string) error
	Justify(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
}

type rosterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ClassMembers(ctx context.Context, classID string, studentIDs []string) (map[string]struct{}, error)
}

type classFinder interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// statisticsNotifier is told whenever stored attendance changes.
type statisticsNotifier interface {
	AttendanceChanged(ctx context.Context)
}

// AttendanceService coordinates roll-call workflows.
type AttendanceService struct {
	repo      attendanceRepository
	students  rosterRepository
	classes   classFinder
	notifier  statisticsNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// AttendanceListRequest filters the attendance listing.
type AttendanceListRequest struct {
	ClassID   string
	StudentID string
	From      *models.Date
	To        *models.Date
	Present   *bool
	Page      int
	PageSize  int
	SortOrder string
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students rosterRepository, classes classFinder, notifier statisticsNotifier, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, students: students, classes: classes, notifier: notifier, validator: validate, logger: logger}
	registerAttendanceValidations(svc.validator)
	return svc
}

// registerDateType lets validator tags see a models.Date as its YYYY-MM-DD text,
// so a zero Date fails required.
func registerDateType(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			return d.String()
		}
		return nil
	}, models.Date{})
}

func registerAttendanceValidations(v *validator.Validate) {
	registerDateType(v)
	v.RegisterValidation("school_day", func(fl validator.FieldLevel) bool {
		d, err := models.ParseDate(fl.Field().String())
		return err == nil && !d.IsWeekend()
	})
	v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToLower(fl.Field().String())).Valid()
	})
	v.RegisterValidation("bulk_mode", func(fl validator.FieldLevel) bool {
		mode := models.BulkOperationMode(fl.Field().String())
		return mode == models.BulkModeAtomic || mode == models.BulkModePartialOnError
	})
}

// List returns paginated attendance rows.
func (s *AttendanceService) List(ctx context.Context, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	filter := models.AttendanceFilter{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		DateFrom:  req.From,
		DateTo:    req.To,
		Present:   req.Present,
		Page:      page,
		PageSize:  size,
		SortOrder: req.SortOrder,
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// RollCall returns the records of a class on a date.
func (s *AttendanceService) RollCall(ctx context.Context, query dto.RollCallQuery) ([]models.AttendanceRecord, error) {
	if query.ClassID == "" || query.Date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "turmaId and date are required")
	}
	rows, err := s.repo.RollCall(ctx, query.ClassID, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roll call")
	}
	return rows, nil
}

// Record stores a single attendance entry.
func (s *AttendanceService) Record(ctx context.Context, req dto.RecordAttendanceRequest, actor *models.JWTClaims) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	members, err := s.students.ClassMembers(ctx, req.ClassID, []string{req.StudentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	if _, ok := members[req.StudentID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student "+req.StudentID+" is not in this class")
	}

	record := newAttendance(req.StudentID, req.ClassID, req.Date, req.Present, req.Excused, req.Reason)
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this student and date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.audit("record", actor, zap.String("attendance_id", record.ID), zap.String("student_id", record.StudentID))
	s.changed(ctx)
	return record, nil
}

// RecordRollCall stores a whole class for a date. Atomic mode (the default) stores
// nothing when any entry conflicts; partialOnError stores what it can and reports
// the rest.
func (s *AttendanceService) RecordRollCall(ctx context.Context, req dto.RollCallRequest, actor *models.JWTClaims) (*dto.RollCallResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	mode := req.Mode
	if mode == "" {
		mode = models.BulkModeAtomic
	}
	atomic := mode == models.BulkModeAtomic

	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Entries))
	ids := make([]string, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if _, ok := seen[entry.StudentID]; ok {
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate student in payload")
		}
		seen[entry.StudentID] = struct{}{}
		ids = append(ids, entry.StudentID)
	}
	members, err := s.students.ClassMembers(ctx, req.ClassID, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}

	result := &dto.RollCallResult{Conflicts: make([]models.AttendanceBulkConflict, 0)}
	records := make([]*models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if _, ok := members[entry.StudentID]; !ok {
			if atomic {
				return nil, appErrors.Clone(appErrors.ErrValidation, "student "+entry.StudentID+" is not in this class")
			}
			result.Conflicts = append(result.Conflicts, models.AttendanceBulkConflict{StudentID: entry.StudentID, Date: req.Date, Reason: "student not in class"})
			continue
		}
		records = append(records, newAttendance(entry.StudentID, req.ClassID, req.Date, entry.Present, entry.Excused, entry.Reason))
	}

	duplicates, err := s.repo.BulkInsert(ctx, records, atomic)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "roll call already recorded for this class and date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record roll call")
	}
	for _, dup := range duplicates {
		result.Conflicts = append(result.Conflicts, models.AttendanceBulkConflict{StudentID: dup.StudentID, Date: dup.Date, Reason: "duplicate record"})
	}
	result.Created = len(records) - len(duplicates)
	if result.Created > 0 {
		s.audit("roll_call", actor, zap.String("class_id", req.ClassID), zap.String("date", req.Date.String()), zap.Int("created", result.Created))
		s.changed(ctx)
	}
	return result, nil
}

// UpdateStatus switches a record between presente, falta and falta_justificada.
func (s *AttendanceService) UpdateStatus(ctx context.Context, id string, req dto.UpdateAttendanceRequest, actor *models.JWTClaims) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	status := models.AttendanceStatus(strings.ToLower(string(req.Status)))
	present, excused := status.Flags()
	var reason *string
	if text := strings.TrimSpace(req.Reason); text != "" && !present {
		reason = &text
	}
	if err := s.repo.UpdateStatus(ctx, id, present, excused, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	s.audit("update_status", actor, zap.String("attendance_id", id), zap.String("status", string(status)))
	s.changed(ctx)
	return s.load(ctx, id)
}

// Justify marks an absence as justified with the given reason.
func (s *AttendanceService) Justify(ctx context.Context, id string, req dto.JustifyAbsenceRequest, actor *models.JWTClaims) (*models.Attendance, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Present {
		return nil, appErrors.ErrAbsenceRequired
	}
	if err := s.repo.Justify(ctx, id, req.Reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAbsenceRequired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to justify absence")
	}
	s.audit("justify", actor, zap.String("attendance_id", id))
	s.changed(ctx)
	return s.load(ctx, id)
}

// Delete removes a record and its justification.
func (s *AttendanceService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	s.audit("delete", actor, zap.String("attendance_id", id))
	s.changed(ctx)
	return nil
}

func (s *AttendanceService) load(ctx context.Context, id string) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return record, nil
}

func (s *AttendanceService) ensureClass(ctx context.Context, classID string) error {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return nil
}

// audit logs who changed attendance. Requests without claims are logged with an
// empty user_id.
func (s *AttendanceService) audit(action string, actor *models.JWTClaims, fields ...zap.Field) {
	fields = append(fields, zap.String("action", action), zap.String("user_id", actor.UserID()))
	s.logger.Info("attendance changed", fields...)
}

func (s *AttendanceService) changed(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.AttendanceChanged(ctx)
	}
}

func newAttendance(studentID, classID string, date models.Date, present, excused bool, reason string) *models.Attendance {
	record := &models.Attendance{
		StudentID: studentID,
		ClassID:   classID,
		Date:      date,
		Present:   present,
		Excused:   excused && !present,
		CreatedAt: time.Now().UTC(),
	}
	if text := strings.TrimSpace(reason); text != "" && !present {
		record.Reason = &text
	}
	return record
}
