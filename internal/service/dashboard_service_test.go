package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/stats"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

type fakeLoader struct {
	input  stats.Input
	err    error
	calls  int
	scopes []models.AttendanceScope
}

func (f *fakeLoader) Load(_ context.Context, scope models.AttendanceScope) (stats.Input, error) {
	f.calls++
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return stats.Input{}, f.err
	}
	return f.input, nil
}

func date(y int, m time.Month, d int) models.Date { return models.NewDate(y, m, d) }

func absences(studentID, classID string, from models.Date, n int) []models.Attendance {
	out := make([]models.Attendance, 0, n)
	for d := from; len(out) < n; d = d.AddDays(-1) {
		if d.IsWeekend() {
			continue
		}
		out = append(out, models.Attendance{ID: studentID + d.String(), StudentID: studentID, ClassID: classID, Date: d})
	}
	return out
}

// sampleInput has three students: s1 with 13 absences and s2 with 10 in class A,
// s3 with 2 in class B. The latest absences fall on Friday 2024-10-18.
func sampleInput() stats.Input {
	friday := date(2024, time.October, 18)
	in := stats.Input{
		Classes: []models.Class{{ID: "A", Name: "1º Ano A"}, {ID: "B", Name: "1º Ano B"}},
		Students: []models.Student{
			{ID: "s1", Name: "Ana", Enrollment: "001", ClassID: "A"},
			{ID: "s2", Name: "Bruno", Enrollment: "002", ClassID: "A"},
			{ID: "s3", Name: "Carla", Enrollment: "003", ClassID: "B"},
		},
	}
	in.Attendance = append(in.Attendance, absences("s1", "A", friday, 13)...)
	in.Attendance = append(in.Attendance, absences("s2", "A", friday, 10)...)
	in.Attendance = append(in.Attendance, absences("s3", "B", friday, 2)...)
	return in
}

func TestDashboardServiceStatsComputesAndCaches(t *testing.T) {
	loader := &fakeLoader{input: sampleInput()}
	repo := &stubCacheRepo{}
	svc := NewDashboardService(DashboardServiceParams{
		Loader: loader,
		Cache:  NewCacheService(repo, nil, time.Minute, zap.NewNop(), true),
		Config: DashboardServiceConfig{CacheTTL: 2 * time.Minute},
	})
	ctx := context.Background()
	ref := date(2024, time.October, 18)

	first, hit, err := svc.Stats(ctx, ref)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, first.TotalActiveStudents)
	assert.Equal(t, 1, first.DropoutAlerts)
	require.Len(t, first.CriticalStudents, 1)
	assert.Equal(t, "s1", first.CriticalStudents[0].StudentID)
	require.Len(t, first.ClassRanking, 1)
	assert.Equal(t, 2, first.ClassRanking[0].StudentsAtRisk)
	assert.Equal(t, 3, first.Today.Absent)
	assert.Contains(t, repo.store, "dashboard:stats:2024-10-18")
	assert.Equal(t, 2*time.Minute, repo.lastTTL)

	second, hit, err := svc.Stats(ctx, ref)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, models.AttendanceScope{}, loader.scopes[0])
}

func TestDashboardServiceStatsDefaultsToTodayInLocation(t *testing.T) {
	loader := &fakeLoader{}
	loc := time.FixedZone("BRT", -3*60*60)
	svc := NewDashboardService(DashboardServiceParams{Loader: loader, Config: DashboardServiceConfig{Location: loc}})
	// 01:30 UTC on the 19th is still the 18th in São Paulo.
	svc.now = func() time.Time { return time.Date(2024, 10, 19, 1, 30, 0, 0, time.UTC) }

	assert.Equal(t, date(2024, time.October, 18), svc.Today())
	bundle, hit, err := svc.Stats(context.Background(), models.Date{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, bundle.LastBusinessDays, stats.BusinessDayWindow)
	assert.Equal(t, "2024-10-18", bundle.LastBusinessDays[stats.BusinessDayWindow-1].Date)
}

func TestDashboardServiceFetchFailureIsUnavailable(t *testing.T) {
	cause := errors.New("connection reset")
	repo := &stubCacheRepo{}
	svc := NewDashboardService(DashboardServiceParams{
		Loader: &fakeLoader{err: cause},
		Cache:  NewCacheService(repo, nil, time.Minute, nil, true),
	})

	bundle, _, err := svc.Stats(context.Background(), date(2024, time.October, 18))
	require.Error(t, err)
	assert.Nil(t, bundle)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDashboardUnavailable.Code, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "could not load dashboard", appErr.Message)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, repo.store)
}

func TestDashboardServiceCacheReadFailureRecomputes(t *testing.T) {
	loader := &fakeLoader{input: sampleInput()}
	repo := &stubCacheRepo{getErr: errors.New("redis down")}
	svc := NewDashboardService(DashboardServiceParams{
		Loader: loader,
		Cache:  NewCacheService(repo, nil, time.Minute, nil, true),
	})

	bundle, hit, err := svc.Stats(context.Background(), date(2024, time.October, 18))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, bundle.TotalActiveStudents)
	assert.Equal(t, 1, loader.calls)
}

func TestDashboardServiceWarmOverwritesCache(t *testing.T) {
	loader := &fakeLoader{input: sampleInput()}
	repo := &stubCacheRepo{store: map[string][]byte{"dashboard:stats:2024-10-18": []byte(`{"totalAlunosAtivos":99}`)}}
	svc := NewDashboardService(DashboardServiceParams{
		Loader: loader,
		Cache:  NewCacheService(repo, nil, time.Minute, nil, true),
	})
	ctx := context.Background()
	ref := date(2024, time.October, 18)

	require.NoError(t, svc.Warm(ctx, ref))
	bundle, hit, err := svc.Stats(ctx, ref)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, bundle.TotalActiveStudents)
}
