package models

import "time"

// BenchSide identifies the seat on a shared bench.
type BenchSide string

const (
	BenchSideNone  BenchSide = ""
	BenchSideLeft  BenchSide = "LEFT"
	BenchSideRight BenchSide = "RIGHT"
)

// SeatAssignment places one student on one bench of one hall for a slot.
type SeatAssignment struct {
	ID             string      `db:"id" json:"id,omitempty"`
	ExamDate       time.Time   `db:"exam_date" json:"exam_date"`
	Session        ExamSession `db:"session" json:"session"`
	HallID         string      `db:"hall_id" json:"hall_id"`
	HallName       string      `db:"hall_name" json:"hall_name"`
	Bench          int         `db:"bench" json:"bench"`
	Side           BenchSide   `db:"side" json:"side,omitempty"`
	SeatNumber     int         `db:"seat_number" json:"seat_number"`
	StudentID      string      `db:"student_id" json:"student_id"`
	RegisterNumber string      `db:"register_number" json:"register_number"`
	StudentName    string      `db:"student_name" json:"student_name"`
	Department     string      `db:"department" json:"department"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// InvigilatorAssignment pairs a used hall with a supervising teacher.
type InvigilatorAssignment struct {
	ID        string      `db:"id" json:"id,omitempty"`
	ExamDate  time.Time   `db:"exam_date" json:"exam_date"`
	Session   ExamSession `db:"session" json:"session"`
	HallID    string      `db:"hall_id" json:"hall_id"`
	HallName  string      `db:"hall_name" json:"hall_name"`
	Teacher   string      `db:"teacher" json:"teacher"`
	Pending   bool        `db:"pending" json:"pending"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// HallOccupancy summarises the departments seated in a hall.
type HallOccupancy struct {
	HallID      string         `json:"hall_id"`
	HallName    string         `json:"hall_name"`
	Capacity    int            `json:"capacity"`
	Seated      int            `json:"seated"`
	Departments map[string]int `json:"departments"`
}

// SlotSeating is the persisted seating of one (date, session).
type SlotSeating struct {
	Slot         ExamSlot                `json:"slot"`
	Assignments  []SeatAssignment        `json:"assignments"`
	Invigilators []InvigilatorAssignment `json:"invigilators"`
}
