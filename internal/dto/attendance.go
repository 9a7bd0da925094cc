package dto

import "github.com/noah-isme/chamada-api/internal/models"

// RecordAttendanceRequest stores a single roll-call entry.
type RecordAttendanceRequest struct {
	StudentID string      `json:"aluno_id" validate:"required"`
	ClassID   string      `json:"turma_id" validate:"required"`
	Date      models.Date `json:"data_chamada" validate:"required,school_day"`
	Present   bool        `json:"presente"`
	Excused   bool        `json:"falta_justificada"`
	Reason    string      `json:"motivo" validate:"max=500"`
}

// RollCallEntry is one student line of a class roll call.
type RollCallEntry struct {
	StudentID string `json:"aluno_id" validate:"required"`
	Present   bool   `json:"presente"`
	Excused   bool   `json:"falta_justificada"`
	Reason    string `json:"motivo" validate:"max=500"`
}

// RollCallRequest records a whole class for a date.
type RollCallRequest struct {
	ClassID string                   `json:"turma_id" validate:"required"`
	Date    models.Date              `json:"data_chamada" validate:"required,school_day"`
	Mode    models.BulkOperationMode `json:"mode" validate:"omitempty,bulk_mode"`
	Entries []RollCallEntry          `json:"presencas" validate:"required,min=1,dive"`
}

// RollCallResult reports what a batch roll call stored.
type RollCallResult struct {
	Created   int                             `json:"created"`
	Conflicts []models.AttendanceBulkConflict `json:"conflicts,omitempty"`
}

// UpdateAttendanceRequest changes the status of a record.
type UpdateAttendanceRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
	Reason string                  `json:"motivo" validate:"max=500"`
}

// JustifyAbsenceRequest attaches a reason to an absence.
type JustifyAbsenceRequest struct {
	Reason string `json:"motivo" validate:"required,max=500"`
}

// RollCallQuery selects a class roll call.
type RollCallQuery struct {
	ClassID string
	Date    models.Date
}
