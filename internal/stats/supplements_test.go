package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

func TestClassStats(t *testing.T) {
	room := "12"
	classes := []models.Class{{ID: "A", Name: "A", RoomNumber: &room}, {ID: "B", Name: "B"}}
	students := []models.Student{
		{ID: "s1", ClassID: "A"},
		{ID: "s2", ClassID: "A"},
		{ID: "s3", ClassID: "B"},
	}
	records := []models.Attendance{
		record("s1", "A", friday, true),
		record("s2", "A", friday, true),
		record("s1", "A", friday.AddDays(-1), true),
		record("s2", "A", friday.AddDays(-1), false),
	}
	records = append(records, absentOn("s3", "A", day(2024, time.February, 1), 13)...)

	out := ClassStats(classes, students, records, DefaultThresholds())
	require.Len(t, out, 2)

	a := out[0]
	assert.Equal(t, 2, a.TotalStudents)
	assert.Equal(t, 17, a.TotalRecords)
	assert.Equal(t, 3, a.Presences)
	assert.Equal(t, 14, a.Absences)
	assert.InDelta(t, 17.647, a.PresentRate, 0.001)
	assert.InDelta(t, 100, a.PresentRate+a.AbsentRate, 0.0001)
	assert.Equal(t, &room, a.RoomNumber)
	assert.Zero(t, a.CriticalStudents)

	b := out[1]
	assert.Equal(t, 1, b.TotalStudents)
	assert.Zero(t, b.TotalRecords)
	assert.Zero(t, b.PresentRate)
	assert.Zero(t, b.AbsentRate)
	assert.Equal(t, 1, b.CriticalStudents)
}

func TestAbsenteesThresholdIsInclusive(t *testing.T) {
	classes := []models.Class{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}}
	students := []models.Student{
		{ID: "two", Name: "Dois", ClassID: "A"},
		{ID: "three", Name: "Três", ClassID: "A"},
		{ID: "five", Name: "Cinco", ClassID: "A"},
	}
	start := day(2024, time.May, 6)
	var records []models.Attendance
	records = append(records, absentOn("two", "A", start, 2)...)
	records = append(records, absentOn("three", "A", start, 3)...)
	records = append(records, record("three", "A", start.AddDays(10), true))
	records = append(records, absentOn("five", "A", start, 5)...)

	report := Absentees(classes, students, records, 3)
	assert.Equal(t, 3, report.MinAbsences)
	require.Len(t, report.Students, 2)
	assert.Equal(t, "five", report.Students[0].StudentID)
	assert.Equal(t, "three", report.Students[1].StudentID)
	assert.Equal(t, 75.0, report.Students[1].AbsencePercent)

	require.Len(t, report.Classes, 2)
	assert.Equal(t, dto.ClassAbsenteeSummary{ClassID: "A", ClassName: "A", TotalAbsentees: 2, AverageAbsences: 4}, report.Classes[0])
	assert.Equal(t, dto.ClassAbsenteeSummary{ClassID: "B", ClassName: "B"}, report.Classes[1])
}

func TestAbsenteesRaisesNonPositiveMinimum(t *testing.T) {
	students := []models.Student{{ID: "clean"}, {ID: "one"}}
	records := []models.Attendance{record("clean", "A", friday, true), record("one", "A", friday, false)}

	report := Absentees(nil, students, records, 0)
	assert.Equal(t, 1, report.MinAbsences)
	require.Len(t, report.Students, 1)
	assert.Equal(t, "one", report.Students[0].StudentID)
	assert.Equal(t, UnknownClassName, report.Students[0].ClassName)
}

func TestWeeklyRiskLevels(t *testing.T) {
	classes := []models.Class{{ID: "A", Name: "Turma A"}}
	students := []models.Student{
		{ID: "three", ClassID: "A"},
		{ID: "four", ClassID: "A"},
		{ID: "five", ClassID: "A"},
		{ID: "two", ClassID: "A"},
	}
	window := BusinessDays(friday, BusinessDayWindow)
	var records []models.Attendance
	add := func(id string, n int) {
		for i := 0; i < n; i++ {
			records = append(records, record(id, "A", window[i], false))
		}
	}
	add("three", 3)
	add("four", 4)
	add("five", 5)
	add("two", 2)
	records = append(records, record("two", "A", day(2024, time.October, 12), false))
	records = append(records, record("two", "A", day(2024, time.October, 13), false))
	records = append(records, record("three", "A", window[6], true))

	alerts := WeeklyRisk(classes, students, records, friday, DefaultThresholds())
	require.Len(t, alerts, 3)
	assert.Equal(t, dto.RiskLevelCritical, alerts[0].Level)
	assert.Equal(t, dto.RiskLevelHigh, alerts[1].Level)
	assert.Equal(t, dto.RiskLevelMedium, alerts[2].Level)
	assert.Equal(t, 75.0, alerts[2].AbsencePercent)
	assert.Equal(t, "Turma A", alerts[0].ClassName)
}

func TestClassReport(t *testing.T) {
	class := models.Class{ID: "A", Name: "Turma A"}
	students := []models.Student{
		{ID: "s1", Name: "Ana", Enrollment: "001", ClassID: "A"},
		{ID: "s2", Name: "Bruno", Enrollment: "002", ClassID: "A"},
		{ID: "s3", Name: "Outra turma", ClassID: "B"},
	}
	records := []models.Attendance{
		record("s1", "A", day(2024, time.January, 10), false),
		record("s1", "A", day(2024, time.January, 11), false),
		record("s1", "A", day(2024, time.March, 5), false),
		record("s1", "A", day(2024, time.March, 6), true),
		record("s1", "B", day(2024, time.April, 1), false),
		record("s1", "A", day(2023, time.December, 1), false),
		record("s3", "A", day(2024, time.January, 10), false),
	}
	certificates := []models.Certificate{
		{StudentID: "s1", Description: "Gripe"},
		{StudentID: "s1", Description: "Consulta"},
	}

	report := ClassReport(class, students, records, certificates, 2024)
	require.Len(t, report.Rows, 2)

	ana := report.Rows[0]
	assert.Equal(t, "Ana", ana.StudentName)
	assert.Equal(t, 2, ana.MonthlyAbsences[0])
	assert.Equal(t, 1, ana.MonthlyAbsences[2])
	assert.Equal(t, 0, ana.MonthlyAbsences[3])
	assert.Equal(t, 0, ana.MonthlyAbsences[11])
	assert.Equal(t, "Gripe; Consulta", ana.Certificates)

	assert.Equal(t, NoCertificates, report.Rows[1].Certificates)

	allYears := ClassReport(class, students, records, nil, 0)
	assert.Equal(t, 1, allYears.Rows[0].MonthlyAbsences[11])
}
