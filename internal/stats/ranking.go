package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// AbsencesByStudent counts absent records per student across every class and date.
func AbsencesByStudent(records []models.Attendance) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if !r.Present {
			counts[r.StudentID]++
		}
	}
	return counts
}

// ClassRanking scores each class by how many of its current students have more
// than threshold absences. Classes scoring zero are left out. Higher scores come
// first and ties keep the order of classes.
func ClassRanking(classes []models.Class, students []models.Student, absences map[string]int, threshold int) []dto.ClassRiskRanking {
	atRisk := make(map[string]int)
	for _, s := range lo.Filter(students, func(s models.Student, _ int) bool { return absences[s.ID] > threshold }) {
		atRisk[s.ClassID]++
	}

	ranking := make([]dto.ClassRiskRanking, 0)
	for _, class := range classes {
		if score := atRisk[class.ID]; score > 0 {
			ranking = append(ranking, dto.ClassRiskRanking{
				ClassID:        class.ID,
				ClassName:      class.Name,
				StudentsAtRisk: score,
			})
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].StudentsAtRisk > ranking[j].StudentsAtRisk
	})
	return ranking
}

// CriticalStudents lists students with more than threshold absences, labelled with
// their current class. Most absences first; ties keep roster order.
func CriticalStudents(classes []models.Class, students []models.Student, absences map[string]int, threshold int) []dto.CriticalStudent {
	names := classNames(classes)

	critical := make([]dto.CriticalStudent, 0)
	for _, s := range students {
		total := absences[s.ID]
		if total <= threshold {
			continue
		}
		critical = append(critical, dto.CriticalStudent{
			StudentID:     s.ID,
			StudentName:   s.Name,
			Enrollment:    s.Enrollment,
			ClassID:       s.ClassID,
			ClassName:     className(names, s.ClassID),
			TotalAbsences: total,
		})
	}

	sort.SliceStable(critical, func(i, j int) bool {
		return critical[i].TotalAbsences > critical[j].TotalAbsences
	})
	return critical
}

func classNames(classes []models.Class) map[string]string {
	return lo.SliceToMap(classes, func(c models.Class) (string, string) { return c.ID, c.Name })
}

func className(names map[string]string, classID string) string {
	if name, ok := names[classID]; ok {
		return name
	}
	return UnknownClassName
}
