package dto

// ClassAttendanceStats summarises all roll calls recorded for a class.
type ClassAttendanceStats struct {
	ClassID          string  `json:"id"`
	ClassName        string  `json:"nome"`
	RoomNumber       *string `json:"numero_sala,omitempty"`
	TotalStudents    int     `json:"total_alunos"`
	TotalRecords     int     `json:"total_chamadas"`
	Presences        int     `json:"presencas"`
	Absences         int     `json:"faltas"`
	PresentRate      float64 `json:"taxa_presenca"`
	AbsentRate       float64 `json:"taxa_falta"`
	CriticalStudents int     `json:"alunos_criticos"`
}

// AbsentStudent is a student at or above the absentee threshold.
type AbsentStudent struct {
	StudentID      string  `json:"aluno_id"`
	StudentName    string  `json:"aluno_nome"`
	Enrollment     string  `json:"matricula"`
	ClassID        string  `json:"turma_id"`
	ClassName      string  `json:"turma_nome"`
	TotalAbsences  int     `json:"total_faltas"`
	AbsencePercent float64 `json:"percentual_faltas"`
}

// ClassAbsenteeSummary aggregates absentees per class.
type ClassAbsenteeSummary struct {
	ClassID         string  `json:"id"`
	ClassName       string  `json:"nome"`
	TotalAbsentees  int     `json:"total_alunos_faltosos"`
	AverageAbsences float64 `json:"media_faltas"`
}

// AbsenteeReport is the payload of the absentee endpoint.
type AbsenteeReport struct {
	MinAbsences int                    `json:"min_faltas"`
	Students    []AbsentStudent        `json:"alunos"`
	Classes     []ClassAbsenteeSummary `json:"turmas"`
}

// RiskLevel grades recent absences.
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "critico"
	RiskLevelHigh     RiskLevel = "alto"
	RiskLevelMedium   RiskLevel = "medio"
)

// WeeklyRiskAlert flags a student with repeated absences in the business-day window.
type WeeklyRiskAlert struct {
	StudentID      string    `json:"aluno_id"`
	StudentName    string    `json:"aluno_nome"`
	Enrollment     string    `json:"matricula"`
	ClassName      string    `json:"turma_nome"`
	RecentAbsences int       `json:"faltas_ultimos_7_dias"`
	AbsencePercent float64   `json:"percentual_faltas"`
	Level          RiskLevel `json:"nivel"`
}

// ClassReportRow is one student line of the class export.
type ClassReportRow struct {
	StudentName     string
	Enrollment      string
	MonthlyAbsences [12]int
	Certificates    string
}

// ClassReport is the per-student matrix exported for a class.
type ClassReport struct {
	ClassID   string
	ClassName string
	Year      int
	Rows      []ClassReportRow
}
