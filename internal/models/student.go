package models

// ExamStudent is a roster entry for one exam slot.
type ExamStudent struct {
	ID             string `db:"id" json:"id"`
	RegisterNumber string `db:"register_number" json:"register_number"`
	Name           string `db:"name" json:"name"`
	Department     string `db:"department" json:"department"`
}
