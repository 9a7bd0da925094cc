package stats

import (
	"sort"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// WeeklyRisk flags students with at least th.WeeklyRiskMin absences inside the
// business-day window ending at today. Most absences first; ties keep roster order.
func WeeklyRisk(classes []models.Class, students []models.Student, records []models.Attendance, today models.Date, th Thresholds) []dto.WeeklyRiskAlert {
	th = th.WithDefaults()
	window := make(map[models.Date]struct{}, BusinessDayWindow)
	for _, d := range BusinessDays(today, BusinessDayWindow) {
		window[d] = struct{}{}
	}

	inWindow := make([]models.Attendance, 0)
	for _, r := range records {
		if _, ok := window[r.Date]; ok {
			inWindow = append(inWindow, r)
		}
	}
	absences := AbsencesByStudent(inWindow)
	totals := recordsByStudent(inWindow)
	names := classNames(classes)

	alerts := make([]dto.WeeklyRiskAlert, 0)
	for _, s := range students {
		count := absences[s.ID]
		if count < th.WeeklyRiskMin {
			continue
		}
		alerts = append(alerts, dto.WeeklyRiskAlert{
			StudentID:      s.ID,
			StudentName:    s.Name,
			Enrollment:     s.Enrollment,
			ClassName:      className(names, s.ClassID),
			RecentAbsences: count,
			AbsencePercent: percent(count, totals[s.ID]),
			Level:          riskLevel(count),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].RecentAbsences > alerts[j].RecentAbsences })
	return alerts
}

func riskLevel(absences int) dto.RiskLevel {
	switch {
	case absences >= 5:
		return dto.RiskLevelCritical
	case absences >= 4:
		return dto.RiskLevelHigh
	default:
		return dto.RiskLevelMedium
	}
}

func recordsByStudent(records []models.Attendance) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.StudentID]++
	}
	return counts
}
