package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ExamSession is a half-day sitting.
type ExamSession string

const (
	SessionForenoon  ExamSession = "FN"
	SessionAfternoon ExamSession = "AN"
	SessionSingle    ExamSession = "SINGLE"
)

// Order sorts sessions within a day: FN and SINGLE sit before AN.
func (s ExamSession) Order() int {
	if s == SessionAfternoon {
		return 1
	}
	return 0
}

// Valid reports whether s is a known session.
func (s ExamSession) Valid() bool {
	switch s {
	case SessionForenoon, SessionAfternoon, SessionSingle:
		return true
	}
	return false
}

// SchedulingPolicy selects the temporal placement strategy.
type SchedulingPolicy string

const (
	PolicyGapConstrained SchedulingPolicy = "GAP_CONSTRAINED"
	PolicyRoundRobin     SchedulingPolicy = "ROUND_ROBIN"
	PolicyFixedSlot      SchedulingPolicy = "FIXED_SLOT"
)

// DefaultPolicy returns the placement strategy used when a request does not name one.
func DefaultPolicy(category ExamCategory) SchedulingPolicy {
	if category == CategoryInternal {
		return PolicyFixedSlot
	}
	return PolicyGapConstrained
}

// ViolationKind classifies soft scheduling failures.
type ViolationKind string

const (
	ViolationGapConstraint   ViolationKind = "GAP_CONSTRAINT"
	ViolationNoSlotAvailable ViolationKind = "NO_SLOT_AVAILABLE"
)

// ViolationSeverity ranks a violation.
type ViolationSeverity string

const (
	SeverityLow    ViolationSeverity = "LOW"
	SeverityMedium ViolationSeverity = "MEDIUM"
	SeverityHigh   ViolationSeverity = "HIGH"
)

// ExamCycleStatus tracks a committed schedule through seating.
type ExamCycleStatus string

const (
	ExamCycleStatusPending   ExamCycleStatus = "PENDING"
	ExamCycleStatusCompleted ExamCycleStatus = "COMPLETED"
)

// ExamSlot is a (date, session) pair. Date is a UTC calendar day.
type ExamSlot struct {
	Date    time.Time   `json:"date"`
	Session ExamSession `json:"session"`
}

// Key returns a stable map key for the slot.
func (s ExamSlot) Key() string {
	return fmt.Sprintf("%s/%s", s.Date.Format("2006-01-02"), s.Session)
}

// Before orders slots chronologically.
func (s ExamSlot) Before(other ExamSlot) bool {
	if !s.Date.Equal(other.Date) {
		return s.Date.Before(other.Date)
	}
	return s.Session.Order() < other.Session.Order()
}

// ScheduledExam is one subject placed into a slot.
type ScheduledExam struct {
	ID           string         `db:"id" json:"id"`
	CycleID      string         `db:"cycle_id" json:"cycle_id,omitempty"`
	SubjectID    string         `db:"subject_id" json:"subject_id"`
	SubjectCode  string         `db:"subject_code" json:"subject_code"`
	SubjectName  string         `db:"subject_name" json:"subject_name"`
	Department   string         `db:"department" json:"department"`
	ExamDate     time.Time      `db:"exam_date" json:"exam_date"`
	Session      ExamSession    `db:"session" json:"session"`
	Weight       WeightClass    `db:"weight" json:"weight"`
	Parity       SemesterParity `db:"parity" json:"parity"`
	Track        SubjectTrack   `db:"track" json:"track"`
	StudentCount int            `db:"student_count" json:"student_count"`
}

// Slot returns the exam's (date, session) pair.
func (e ScheduledExam) Slot() ExamSlot {
	return ExamSlot{Date: e.ExamDate, Session: e.Session}
}

// ScheduleViolation records a soft failure alongside a best-effort schedule.
type ScheduleViolation struct {
	ID          string            `db:"id" json:"id,omitempty"`
	CycleID     string            `db:"cycle_id" json:"cycle_id,omitempty"`
	SubjectID   string            `db:"subject_id" json:"subject_id"`
	SubjectCode string            `db:"subject_code" json:"subject_code"`
	Department  string            `db:"department" json:"department"`
	Kind        ViolationKind     `db:"kind" json:"kind"`
	Severity    ViolationSeverity `db:"severity" json:"severity"`
	Description string            `db:"description" json:"description"`
}

// ExamCycle is one committed schedule run.
type ExamCycle struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Category  ExamCategory     `db:"category" json:"category"`
	Year      int              `db:"year" json:"year"`
	Parity    SemesterParity   `db:"parity" json:"parity"`
	Policy    SchedulingPolicy `db:"policy" json:"policy"`
	StartDate time.Time        `db:"start_date" json:"start_date"`
	EndDate   time.Time        `db:"end_date" json:"end_date"`
	Status    ExamCycleStatus  `db:"status" json:"status"`
	Meta      types.JSONText   `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// ExamCycleFilter narrows cycle listings.
type ExamCycleFilter struct {
	Category ExamCategory
	Status   ExamCycleStatus
	Year     int
}
