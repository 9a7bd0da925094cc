package stats

import (
	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// ClassStats summarises the roll calls recorded under each class, in class order.
// Records count toward the class they were taken in; roster size and critical
// students follow the current assignment.
func ClassStats(classes []models.Class, students []models.Student, records []models.Attendance, th Thresholds) []dto.ClassAttendanceStats {
	th = th.WithDefaults()
	absences := AbsencesByStudent(records)

	type tally struct{ roster, critical, records, presences int }
	tallies := make(map[string]*tally, len(classes))
	for _, c := range classes {
		tallies[c.ID] = &tally{}
	}
	for _, s := range students {
		if t, ok := tallies[s.ClassID]; ok {
			t.roster++
			if absences[s.ID] > th.CriticalAbsences {
				t.critical++
			}
		}
	}
	for _, r := range records {
		if t, ok := tallies[r.ClassID]; ok {
			t.records++
			if r.Present {
				t.presences++
			}
		}
	}

	out := make([]dto.ClassAttendanceStats, 0, len(classes))
	for _, c := range classes {
		t := tallies[c.ID]
		absent := t.records - t.presences
		out = append(out, dto.ClassAttendanceStats{
			ClassID:          c.ID,
			ClassName:        c.Name,
			RoomNumber:       c.RoomNumber,
			TotalStudents:    t.roster,
			TotalRecords:     t.records,
			Presences:        t.presences,
			Absences:         absent,
			PresentRate:      percent(t.presences, t.records),
			AbsentRate:       percent(absent, t.records),
			CriticalStudents: t.critical,
		})
	}
	return out
}
