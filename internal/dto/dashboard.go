package dto

// Trend classifies the monthly attendance series.
type Trend string

const (
	TrendRising  Trend = "subindo"
	TrendFalling Trend = "descendo"
	TrendStable  Trend = "estavel"
)

// DashboardStats is the statistics bundle rendered by the dashboard.
type DashboardStats struct {
	TotalActiveStudents    int                   `json:"totalAlunosAtivos"`
	Today                  TodayAttendance       `json:"presencaHoje"`
	WeeklyAbsenceAverage   float64               `json:"mediaFaltasSemana"`
	DropoutAlerts          int                   `json:"alunosAlertaEvasao"`
	ClassesWithoutRollCall int                   `json:"turmasSemChamadaHoje"`
	LastBusinessDays       []DailyFrequencyPoint `json:"frequenciaUltimos7Dias"`
	ClassRanking           []ClassRiskRanking    `json:"rankingTurmasComMaisFaltas"`
	AbsencesByTurn         []TurnDistribution    `json:"distribuicaoFaltasPorTurno"`
	CriticalStudents       []CriticalStudent     `json:"alunosSituacaoCritica"`
	RecentMonths           MonthlyOverview       `json:"dadosUltimosMeses"`
}

// TodayAttendance holds the reference-day counts.
type TodayAttendance struct {
	Present int `json:"presentes"`
	Absent  int `json:"faltas"`
	Total   int `json:"total"`
}

// DailyFrequencyPoint is one business day of the trailing window.
type DailyFrequencyPoint struct {
	Label          string  `json:"data"`
	Date           string  `json:"data_iso"`
	Present        int     `json:"presentes"`
	Absent         int     `json:"faltas"`
	PresentPercent float64 `json:"percentual_presenca"`
}

// MonthlyFrequencyPoint aggregates one calendar month.
type MonthlyFrequencyPoint struct {
	Label          string  `json:"mes"`
	Month          string  `json:"mes_ref"`
	Presences      int     `json:"total_presencas"`
	Absences       int     `json:"total_faltas"`
	Records        int     `json:"total_registros"`
	PresentPercent float64 `json:"percentual_presenca"`
}

// MonthlyOverview pairs the monthly series with its trend.
type MonthlyOverview struct {
	Months []MonthlyFrequencyPoint `json:"presencas_por_mes"`
	Trend  Trend                   `json:"tendencia"`
}

// ClassRiskRanking counts students above the risk threshold in a class.
type ClassRiskRanking struct {
	ClassID        string `json:"turma_id"`
	ClassName      string `json:"turma_nome"`
	StudentsAtRisk int    `json:"alunos_com_mais_9_faltas"`
}

// CriticalStudent is a student above the critical absence threshold.
type CriticalStudent struct {
	StudentID     string `json:"aluno_id"`
	StudentName   string `json:"aluno_nome"`
	Enrollment    string `json:"matricula"`
	ClassID       string `json:"turma_id"`
	ClassName     string `json:"turma_nome"`
	TotalAbsences int    `json:"total_faltas"`
}

// TurnDistribution is the absence share attributed to a school shift.
type TurnDistribution struct {
	Turn     string `json:"turno"`
	Absences int    `json:"faltas"`
}
