package models

import "time"

// AttendanceStatus is the editable state of a roll-call entry.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "presente"
	AttendanceStatusAbsent  AttendanceStatus = "falta"
	AttendanceStatusExcused AttendanceStatus = "falta_justificada"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Flags maps the status onto the presente/falta_justificada columns.
func (s AttendanceStatus) Flags() (present bool, excused bool) {
	switch s {
	case AttendanceStatusPresent:
		return true, false
	case AttendanceStatusExcused:
		return false, true
	default:
		return false, false
	}
}

// BulkOperationMode controls how batch roll calls behave on errors.
type BulkOperationMode string

const (
	BulkModeAtomic         BulkOperationMode = "atomic"
	BulkModePartialOnError BulkOperationMode = "partialOnError"
)

// Attendance is a row of the presencas table. ClassID is the class at call time,
// which can differ from the student's current class. Reason carries the linked
// justification text when one exists.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"aluno_id" json:"aluno_id"`
	ClassID   string    `db:"turma_id" json:"turma_id"`
	Date      Date      `db:"data_chamada" json:"data_chamada"`
	Present   bool      `db:"presente" json:"presente"`
	Excused   bool      `db:"falta_justificada" json:"falta_justificada"`
	Reason    *string   `db:"motivo" json:"motivo,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Status derives the editable status from the stored flags.
func (a Attendance) Status() AttendanceStatus {
	switch {
	case a.Present:
		return AttendanceStatusPresent
	case a.Excused:
		return AttendanceStatusExcused
	default:
		return AttendanceStatusAbsent
	}
}

// AttendanceRecord extends an attendance row with student and class labels.
type AttendanceRecord struct {
	Attendance
	StudentName string  `db:"aluno_nome" json:"aluno_nome"`
	Enrollment  string  `db:"matricula" json:"matricula"`
	ClassName   *string `db:"turma_nome" json:"turma_nome,omitempty"`
}

// AttendanceFilter defines listing filters.
type AttendanceFilter struct {
	ClassID   string
	StudentID string
	DateFrom  *Date
	DateTo    *Date
	Present   *bool
	Page      int
	PageSize  int
	SortOrder string
}

// AttendanceBulkConflict captures entries a batch roll call could not store.
type AttendanceBulkConflict struct {
	StudentID string `json:"aluno_id"`
	Date      Date   `json:"data_chamada"`
	Reason    string `json:"reason"`
}

// Justification is a row of justificativas_faltas.
type Justification struct {
	ID           string    `db:"id" json:"id"`
	AttendanceID string    `db:"presenca_id" json:"presenca_id"`
	Reason       string    `db:"motivo" json:"motivo"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AttendanceScope bounds the unpaginated reads used by the statistics engine.
type AttendanceScope struct {
	ClassID string
	From    *Date
	To      *Date
}
