package models

import "time"

// Class is a row of the turmas table. Names are not unique.
type Class struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"nome" json:"nome"`
	RoomNumber *string   `db:"numero_sala" json:"numero_sala,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
