package models

// Invigilator is a staff member available to supervise a hall.
type Invigilator struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Department string `db:"department" json:"department"`
	Active     bool   `db:"active" json:"active"`
}
