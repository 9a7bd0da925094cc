package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	records    map[string]*models.Attendance
	created    []*models.Attendance
	duplicates map[string]bool
	filter     models.AttendanceFilter
	total      int
	updated    []string
	justified  map[string]string
	deleted    []string
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]*models.Attendance{}, duplicates: map[string]bool{}, justified: map[string]string{}}
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	f.filter = filter
	return []models.AttendanceRecord{}, f.total, nil
}

func (f *fakeAttendanceRepo) RollCall(_ context.Context, classID string, d models.Date) ([]models.AttendanceRecord, error) {
	out := make([]models.AttendanceRecord, 0)
	for _, r := range f.records {
		if r.ClassID == classID && r.Date == d {
			out = append(out, models.AttendanceRecord{Attendance: *r})
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) FindByID(_ context.Context, id string) (*models.Attendance, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	_, err := f.BulkInsert(ctx, []*models.Attendance{record}, true)
	return err
}

func (f *fakeAttendanceRepo) BulkInsert(_ context.Context, records []*models.Attendance, atomic bool) ([]*models.Attendance, error) {
	conflicts := make([]*models.Attendance, 0)
	for _, r := range records {
		if f.duplicates[r.StudentID] {
			if atomic {
				return nil, fmt.Errorf("student %s: %w", r.StudentID, repository.ErrDuplicateAttendance)
			}
			conflicts = append(conflicts, r)
		}
	}
	for _, r := range records {
		if f.duplicates[r.StudentID] {
			continue
		}
		r.ID = "p-" + r.StudentID
		f.records[r.ID] = r
		f.created = append(f.created, r)
	}
	return conflicts, nil
}

func (f *fakeAttendanceRepo) UpdateStatus(_ context.Context, id string, present, excused bool, reason *string) error {
	r, ok := f.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Present, r.Excused, r.Reason = present, excused, reason
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeAttendanceRepo) Justify(_ context.Context, id, reason string) error {
	r, ok := f.records[id]
	if !ok || r.Present {
		return sql.ErrNoRows
	}
	r.Excused = true
	r.Reason = &reason
	f.justified[id] = reason
	return nil
}

func (f *fakeAttendanceRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRoster struct {
	students map[string]models.Student
}

func (f *fakeRoster) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeRoster) ClassMembers(_ context.Context, classID string, ids []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, id := range ids {
		if s, ok := f.students[id]; ok && s.ClassID == classID {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

type countingNotifier struct{ calls int }

func (n *countingNotifier) AttendanceChanged(context.Context) { n.calls++ }

type attendanceFixture struct {
	svc      *AttendanceService
	repo     *fakeAttendanceRepo
	notifier *countingNotifier
}

func newAttendanceFixture() attendanceFixture {
	repo := newFakeAttendanceRepo()
	roster := &fakeRoster{students: map[string]models.Student{
		"s1": {ID: "s1", Name: "Ana", ClassID: "A"},
		"s2": {ID: "s2", Name: "Bruno", ClassID: "A"},
		"s3": {ID: "s3", Name: "Carla", ClassID: "B"},
	}}
	classes := &fakeClasses{rows: []models.Class{{ID: "A", Name: "1º Ano A"}, {ID: "B", Name: "1º Ano B"}}}
	notifier := &countingNotifier{}
	return attendanceFixture{
		svc:      NewAttendanceService(repo, roster, classes, notifier, nil, nil),
		repo:     repo,
		notifier: notifier,
	}
}

func assertAppError(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, appErrors.FromError(err).Status)
}

func TestAttendanceServiceRecord(t *testing.T) {
	f := newAttendanceFixture()

	record, err := f.svc.Record(context.Background(), dto.RecordAttendanceRequest{
		StudentID: "s1",
		ClassID:   "A",
		Date:      date(2024, time.October, 18),
		Excused:   true,
		Reason:    "  Consulta médica ",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "p-s1", record.ID)
	assert.Equal(t, models.AttendanceStatusExcused, record.Status())
	require.NotNil(t, record.Reason)
	assert.Equal(t, "Consulta médica", *record.Reason)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestAttendanceServiceRecordPresentDropsReason(t *testing.T) {
	f := newAttendanceFixture()

	record, err := f.svc.Record(context.Background(), dto.RecordAttendanceRequest{
		StudentID: "s1", ClassID: "A", Date: date(2024, time.October, 18), Present: true, Excused: true, Reason: "x",
	}, nil)
	require.NoError(t, err)
	assert.False(t, record.Excused)
	assert.Nil(t, record.Reason)
}

func TestAttendanceServiceRecordValidation(t *testing.T) {
	f := newAttendanceFixture()
	ctx := context.Background()

	_, err := f.svc.Record(ctx, dto.RecordAttendanceRequest{StudentID: "s1", ClassID: "A", Date: date(2024, time.October, 19)}, nil)
	assertAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.Record(ctx, dto.RecordAttendanceRequest{StudentID: "s1", ClassID: "A"}, nil)
	assertAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.Record(ctx, dto.RecordAttendanceRequest{StudentID: "s9", ClassID: "A", Date: date(2024, time.October, 18)}, nil)
	assertAppError(t, err, http.StatusNotFound)

	_, err = f.svc.Record(ctx, dto.RecordAttendanceRequest{StudentID: "s1", ClassID: "Z", Date: date(2024, time.October, 18)}, nil)
	assertAppError(t, err, http.StatusNotFound)

	assert.Zero(t, f.notifier.calls)
}

func TestAttendanceServiceRecordRejectsStudentFromAnotherClass(t *testing.T) {
	f := newAttendanceFixture()

	_, err := f.svc.Record(context.Background(), dto.RecordAttendanceRequest{StudentID: "s3", ClassID: "A", Date: date(2024, time.October, 18)}, nil)
	assertAppError(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "not in this class")
	assert.Empty(t, f.repo.created)
	assert.Zero(t, f.notifier.calls)
}

func TestAttendanceServiceRecordDuplicateConflicts(t *testing.T) {
	f := newAttendanceFixture()
	f.repo.duplicates["s1"] = true

	_, err := f.svc.Record(context.Background(), dto.RecordAttendanceRequest{StudentID: "s1", ClassID: "A", Date: date(2024, time.October, 18)}, nil)
	assertAppError(t, err, http.StatusConflict)
	assert.Zero(t, f.notifier.calls)
}

func TestAttendanceServiceRollCallAtomic(t *testing.T) {
	f := newAttendanceFixture()
	ctx := context.Background()
	req := dto.RollCallRequest{
		ClassID: "A",
		Date:    date(2024, time.October, 18),
		Entries: []dto.RollCallEntry{{StudentID: "s1", Present: true}, {StudentID: "s2"}},
	}

	result, err := f.svc.RecordRollCall(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 1, f.notifier.calls)

	f.repo.duplicates["s2"] = true
	_, err = f.svc.RecordRollCall(ctx, req, nil)
	assertAppError(t, err, http.StatusConflict)

	req.Entries = append(req.Entries, dto.RollCallEntry{StudentID: "s3"})
	_, err = f.svc.RecordRollCall(ctx, req, nil)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestAttendanceServiceRollCallPartialReportsConflicts(t *testing.T) {
	f := newAttendanceFixture()
	f.repo.duplicates["s2"] = true

	result, err := f.svc.RecordRollCall(context.Background(), dto.RollCallRequest{
		ClassID: "A",
		Date:    date(2024, time.October, 18),
		Mode:    models.BulkModePartialOnError,
		Entries: []dto.RollCallEntry{{StudentID: "s1"}, {StudentID: "s2"}, {StudentID: "s3"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Conflicts, 2)
	assert.Equal(t, "s3", result.Conflicts[0].StudentID)
	assert.Equal(t, "student not in class", result.Conflicts[0].Reason)
	assert.Equal(t, "s2", result.Conflicts[1].StudentID)
	assert.Equal(t, "duplicate record", result.Conflicts[1].Reason)
}

func TestAttendanceServiceRollCallRejectsBadPayloads(t *testing.T) {
	f := newAttendanceFixture()
	ctx := context.Background()

	_, err := f.svc.RecordRollCall(ctx, dto.RollCallRequest{
		ClassID: "A", Date: date(2024, time.October, 18),
		Entries: []dto.RollCallEntry{{StudentID: "s1"}, {StudentID: "s1"}},
	}, nil)
	assertAppError(t, err, http.StatusConflict)

	_, err = f.svc.RecordRollCall(ctx, dto.RollCallRequest{
		ClassID: "A", Date: date(2024, time.October, 18), Mode: "eventually",
		Entries: []dto.RollCallEntry{{StudentID: "s1"}},
	}, nil)
	assertAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.RecordRollCall(ctx, dto.RollCallRequest{ClassID: "A", Date: date(2024, time.October, 18)}, nil)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestAttendanceServiceUpdateStatus(t *testing.T) {
	f := newAttendanceFixture()
	ctx := context.Background()
	f.repo.records["p1"] = &models.Attendance{ID: "p1", StudentID: "s1", ClassID: "A", Date: date(2024, time.October, 18), Present: true}

	updated, err := f.svc.UpdateStatus(ctx, "p1", dto.UpdateAttendanceRequest{Status: "FALTA_JUSTIFICADA", Reason: "Atestado"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusExcused, updated.Status())
	require.NotNil(t, updated.Reason)
	assert.Equal(t, "Atestado", *updated.Reason)

	updated, err = f.svc.UpdateStatus(ctx, "p1", dto.UpdateAttendanceRequest{Status: models.AttendanceStatusPresent, Reason: "ignored"}, nil)
	require.NoError(t, err)
	assert.True(t, updated.Present)
	assert.Nil(t, updated.Reason)
	assert.Equal(t, 2, f.notifier.calls)

	_, err = f.svc.UpdateStatus(ctx, "missing", dto.UpdateAttendanceRequest{Status: models.AttendanceStatusAbsent}, nil)
	assertAppError(t, err, http.StatusNotFound)

	_, err = f.svc.UpdateStatus(ctx, "p1", dto.UpdateAttendanceRequest{Status: "atrasado"}, nil)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestAttendanceServiceJustify(t *testing.T) {
	f := newAttendanceFixture()
	ctx := context.Background()
	f.repo.records["p1"] = &models.Attendance{ID: "p1", StudentID: "s1", Present: true}
	f.repo.records["p2"] = &models.Attendance{ID: "p2", StudentID: "s2"}

	_, err := f.svc.Justify(ctx, "p1", dto.JustifyAbsenceRequest{Reason: "Consulta"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrAbsenceRequired)

	_, err = f.svc.Justify(ctx, "p2", dto.JustifyAbsenceRequest{Reason: "   "}, nil)
	assertAppError(t, err, http.StatusBadRequest)

	justified, err := f.svc.Justify(ctx, "p2", dto.JustifyAbsenceRequest{Reason: "Consulta"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusExcused, justified.Status())
	assert.Equal(t, "Consulta", f.repo.justified["p2"])
	assert.Equal(t, 1, f.notifier.calls)

	_, err = f.svc.Justify(ctx, "missing", dto.JustifyAbsenceRequest{Reason: "Consulta"}, nil)
	assertAppError(t, err, http.StatusNotFound)
}

func TestAttendanceServiceDelete(t *testing.T) {
	f := newAttendanceFixture()
	f.repo.records["p1"] = &models.Attendance{ID: "p1"}

	require.NoError(t, f.svc.Delete(context.Background(), "p1", nil))
	assert.Equal(t, []string{"p1"}, f.repo.deleted)
	assert.Equal(t, 1, f.notifier.calls)

	assertAppError(t, f.svc.Delete(context.Background(), "p1", nil), http.StatusNotFound)
}

func TestAttendanceServiceLogsActingUser(t *testing.T) {
	f := newAttendanceFixture()
	core, logs := observer.New(zapcore.InfoLevel)
	f.svc.logger = zap.New(core)
	ctx := context.Background()
	actor := &models.JWTClaims{Role: models.RoleMonitor, RegisteredClaims: jwt.RegisteredClaims{Subject: "u-42"}}

	_, err := f.svc.RecordRollCall(ctx, dto.RollCallRequest{
		ClassID: "A",
		Date:    date(2024, time.October, 18),
		Entries: []dto.RollCallEntry{{StudentID: "s1"}, {StudentID: "s2", Present: true}},
	}, actor)
	require.NoError(t, err)
	_, err = f.svc.Justify(ctx, "p-s1", dto.JustifyAbsenceRequest{Reason: "Consulta"}, actor)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, "p-s2", actor))

	entries := logs.FilterMessage("attendance changed").All()
	require.Len(t, entries, 3)
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, "u-42", fields["user_id"])
		actions = append(actions, fields["action"].(string))
	}
	assert.Equal(t, []string{"roll_call", "justify", "delete"}, actions)
}

func TestAttendanceServiceListPagination(t *testing.T) {
	f := newAttendanceFixture()
	f.repo.total = 120

	_, pagination, err := f.svc.List(context.Background(), AttendanceListRequest{ClassID: "A", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 120}, pagination)
	assert.Equal(t, "A", f.repo.filter.ClassID)

	from, to := date(2024, time.October, 18), date(2024, time.October, 1)
	_, _, err = f.svc.List(context.Background(), AttendanceListRequest{From: &from, To: &to})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestAttendanceServiceRollCallQuery(t *testing.T) {
	f := newAttendanceFixture()
	d := date(2024, time.October, 18)
	f.repo.records["p1"] = &models.Attendance{ID: "p1", ClassID: "A", Date: d}
	f.repo.records["p2"] = &models.Attendance{ID: "p2", ClassID: "B", Date: d}

	rows, err := f.svc.RollCall(context.Background(), dto.RollCallQuery{ClassID: "A", Date: d})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID)

	_, err = f.svc.RollCall(context.Background(), dto.RollCallQuery{ClassID: "A"})
	assertAppError(t, err, http.StatusBadRequest)
}
