package models

import "time"

// Student is a row of the alunos table. ClassID is the student's current class and
// may be empty for students not yet placed.
type Student struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"nome" json:"nome"`
	Enrollment string    `db:"matricula" json:"matricula"`
	ClassID    string    `db:"turma_id" json:"turma_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter narrows roster queries.
type StudentFilter struct {
	ClassID string
}
