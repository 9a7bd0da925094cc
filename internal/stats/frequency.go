package stats

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// BusinessDays returns the n most recent weekdays ending at ref (inclusive),
// oldest first. Weekends are walked over but never counted.
func BusinessDays(ref models.Date, n int) []models.Date {
	days := make([]models.Date, n)
	cursor := ref
	for i := n - 1; i >= 0; {
		if !cursor.IsWeekend() {
			days[i] = cursor
			i--
		}
		cursor = cursor.AddDays(-1)
	}
	return days
}

// DailyFrequency computes one point per business day of the trailing window.
// Days without roll calls still appear with zero counts.
func DailyFrequency(records []models.Attendance, ref models.Date) []dto.DailyFrequencyPoint {
	days := BusinessDays(ref, BusinessDayWindow)
	byDay := lo.GroupBy(records, func(r models.Attendance) models.Date { return r.Date })

	points := make([]dto.DailyFrequencyPoint, 0, len(days))
	for _, day := range days {
		dayRecords := byDay[day]
		present := lo.CountBy(dayRecords, func(r models.Attendance) bool { return r.Present })
		points = append(points, dto.DailyFrequencyPoint{
			Label:          dayLabel(day),
			Date:           day.String(),
			Present:        present,
			Absent:         len(dayRecords) - present,
			PresentPercent: percent(present, len(dayRecords)),
		})
	}
	return points
}

// WeeklyAbsences sums the absences over the frequency window.
func WeeklyAbsences(points []dto.DailyFrequencyPoint) int {
	return lo.SumBy(points, func(p dto.DailyFrequencyPoint) int { return p.Absent })
}

func dayLabel(d models.Date) string {
	return fmt.Sprintf("%02d/%02d", d.Day(), int(d.Month()))
}
