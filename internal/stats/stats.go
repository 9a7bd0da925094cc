// Package stats turns raw roster and roll-call rows into the derived attendance
// metrics shown on the dashboard. Every calculator is a pure function of its
// arguments; the reference day is always passed in explicitly.
package stats

import (
	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

const (
	// BusinessDayWindow is the number of weekdays in the trailing frequency window.
	BusinessDayWindow = 7
	// MonthWindow is the number of calendar months, current one included, in the monthly series.
	MonthWindow = 6
	// MinTrendPoints is the smallest monthly series that gets a trend other than stable.
	MinTrendPoints = 4

	// UnknownClassName labels students whose current class is missing.
	UnknownClassName = "N/A"
)

// Thresholds are the tunable cut-offs used by the calculators. Risk and critical
// counts are strict (absences must exceed them); absentee and weekly-risk minimums
// are inclusive.
type Thresholds struct {
	RiskAbsences     int
	CriticalAbsences int
	TrendMargin      float64
	AbsenteeMin      int
	WeeklyRiskMin    int
}

// DefaultThresholds returns the values the dashboard has always used.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RiskAbsences:     9,
		CriticalAbsences: 12,
		TrendMargin:      3,
		AbsenteeMin:      3,
		WeeklyRiskMin:    3,
	}
}

// WithDefaults fills zero or negative fields from DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	def := DefaultThresholds()
	if t.RiskAbsences <= 0 {
		t.RiskAbsences = def.RiskAbsences
	}
	if t.CriticalAbsences <= 0 {
		t.CriticalAbsences = def.CriticalAbsences
	}
	if t.TrendMargin <= 0 {
		t.TrendMargin = def.TrendMargin
	}
	if t.AbsenteeMin <= 0 {
		t.AbsenteeMin = def.AbsenteeMin
	}
	if t.WeeklyRiskMin <= 0 {
		t.WeeklyRiskMin = def.WeeklyRiskMin
	}
	return t
}

// Input is the snapshot of rows the aggregator works on.
type Input struct {
	Students   []models.Student    `json:"alunos"`
	Classes    []models.Class      `json:"turmas"`
	Attendance []models.Attendance `json:"presencas"`
}

// Compute assembles the dashboard bundle for the reference day.
func Compute(in Input, today models.Date, th Thresholds) dto.DashboardStats {
	th = th.WithDefaults()

	week := DailyFrequency(in.Attendance, today)
	weekly := WeeklyAbsences(week)
	absences := AbsencesByStudent(in.Attendance)
	critical := CriticalStudents(in.Classes, in.Students, absences, th.CriticalAbsences)
	months := MonthlyFrequency(in.Attendance, today)

	return dto.DashboardStats{
		TotalActiveStudents:    len(in.Students),
		Today:                  TodayAttendance(in.Attendance, today),
		WeeklyAbsenceAverage:   float64(weekly) / BusinessDayWindow,
		DropoutAlerts:          len(critical),
		ClassesWithoutRollCall: ClassesWithoutRollCall(in.Classes, in.Attendance, today),
		LastBusinessDays:       week,
		ClassRanking:           ClassRanking(in.Classes, in.Students, absences, th.RiskAbsences),
		AbsencesByTurn:         TurnDistribution(weekly),
		CriticalStudents:       critical,
		RecentMonths: dto.MonthlyOverview{
			Months: months,
			Trend:  ClassifyTrend(months, th.TrendMargin),
		},
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
