package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// Absentees lists students with at least minAbsences absences and a per-class
// summary covering every class. minAbsences below 1 is raised to 1.
func Absentees(classes []models.Class, students []models.Student, records []models.Attendance, minAbsences int) dto.AbsenteeReport {
	if minAbsences < 1 {
		minAbsences = 1
	}
	names := classNames(classes)
	absences := AbsencesByStudent(records)
	totals := recordsByStudent(records)

	list := make([]dto.AbsentStudent, 0)
	for _, s := range students {
		count := absences[s.ID]
		if count < minAbsences {
			continue
		}
		list = append(list, dto.AbsentStudent{
			StudentID:      s.ID,
			StudentName:    s.Name,
			Enrollment:     s.Enrollment,
			ClassID:        s.ClassID,
			ClassName:      className(names, s.ClassID),
			TotalAbsences:  count,
			AbsencePercent: percent(count, totals[s.ID]),
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].TotalAbsences > list[j].TotalAbsences })

	byClass := lo.GroupBy(list, func(a dto.AbsentStudent) string { return a.ClassID })
	summary := make([]dto.ClassAbsenteeSummary, 0, len(classes))
	for _, c := range classes {
		members := byClass[c.ID]
		avg := 0.0
		if len(members) > 0 {
			avg = float64(lo.SumBy(members, func(a dto.AbsentStudent) int { return a.TotalAbsences })) / float64(len(members))
		}
		summary = append(summary, dto.ClassAbsenteeSummary{
			ClassID:         c.ID,
			ClassName:       c.Name,
			TotalAbsentees:  len(members),
			AverageAbsences: avg,
		})
	}

	return dto.AbsenteeReport{MinAbsences: minAbsences, Students: list, Classes: summary}
}
