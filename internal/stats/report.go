package stats

import (
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/chamada-api/internal/dto"
	"github.com/noah-isme/chamada-api/internal/models"
)

// NoCertificates fills the certificate column when a student has none.
const NoCertificates = "Nenhum"

// MonthNames are the full pt-BR month names used as report columns.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// ClassReport builds the per-student monthly absence matrix of a class. Only
// records taken in that class count. Year 0 includes every year.
func ClassReport(class models.Class, students []models.Student, records []models.Attendance, certificates []models.Certificate, year int) dto.ClassReport {
	roster := lo.Filter(students, func(s models.Student, _ int) bool { return s.ClassID == class.ID })
	certs := lo.GroupBy(certificates, func(c models.Certificate) string { return c.StudentID })

	monthly := make(map[string]*[12]int, len(roster))
	for _, s := range roster {
		monthly[s.ID] = &[12]int{}
	}
	for _, r := range records {
		if r.Present || r.ClassID != class.ID {
			continue
		}
		if year != 0 && r.Date.Year() != year {
			continue
		}
		if counts, ok := monthly[r.StudentID]; ok {
			counts[r.Date.Month()-1]++
		}
	}

	rows := make([]dto.ClassReportRow, 0, len(roster))
	for _, s := range roster {
		descriptions := lo.Map(certs[s.ID], func(c models.Certificate, _ int) string { return c.Description })
		joined := strings.Join(descriptions, "; ")
		if joined == "" {
			joined = NoCertificates
		}
		rows = append(rows, dto.ClassReportRow{
			StudentName:     s.Name,
			Enrollment:      s.Enrollment,
			MonthlyAbsences: *monthly[s.ID],
			Certificates:    joined,
		})
	}

	return dto.ClassReport{ClassID: class.ID, ClassName: class.Name, Year: year, Rows: rows}
}
