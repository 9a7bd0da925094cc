package stats

import (
	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// Shift labels, in output order.
const (
	TurnMorning   = "Manhã"
	TurnAfternoon = "Tarde"
	TurnEvening   = "Noite"
)

// TodayAttendance counts the records dated on the reference day.
func TodayAttendance(records []models.Attendance, today models.Date) dto.TodayAttendance {
	var out dto.TodayAttendance
	for _, r := range records {
		if r.Date != today {
			continue
		}
		if r.Present {
			out.Present++
		} else {
			out.Absent++
		}
	}
	out.Total = out.Present + out.Absent
	return out
}

// TurnDistribution splits the weekly absences 40/40/20 across the shifts, rounding
// each share down. Records carry no shift, so this is a fixed allocation.
func TurnDistribution(weeklyAbsences int) []dto.TurnDistribution {
	return []dto.TurnDistribution{
		{Turn: TurnMorning, Absences: weeklyAbsences * 4 / 10},
		{Turn: TurnAfternoon, Absences: weeklyAbsences * 4 / 10},
		{Turn: TurnEvening, Absences: weeklyAbsences * 2 / 10},
	}
}

// ClassesWithoutRollCall counts known classes with no record dated today.
func ClassesWithoutRollCall(classes []models.Class, records []models.Attendance, today models.Date) int {
	called := make(map[string]struct{})
	for _, r := range records {
		if r.Date == today {
			called[r.ClassID] = struct{}{}
		}
	}

	missing := 0
	for _, c := range classes {
		if _, ok := called[c.ID]; !ok {
			missing++
		}
	}
	return missing
}
