package models

// SemesterParity distinguishes odd and even semesters of an academic year.
type SemesterParity string

const (
	ParityOdd  SemesterParity = "ODD"
	ParityEven SemesterParity = "EVEN"
)

// Opposite returns the other parity. Arrear subjects come from the opposite one.
func (p SemesterParity) Opposite() SemesterParity {
	if p == ParityOdd {
		return ParityEven
	}
	return ParityOdd
}

// Valid reports whether p is a known parity.
func (p SemesterParity) Valid() bool {
	return p == ParityOdd || p == ParityEven
}

// WeightClass governs the spacing a subject needs before the department's next exam.
type WeightClass string

const (
	WeightHeavy    WeightClass = "HEAVY"
	WeightNonMajor WeightClass = "NONMAJOR"
)

// ExamCategory is the kind of exam cycle a subject is examined in.
type ExamCategory string

const (
	CategorySemester ExamCategory = "SEMESTER"
	CategoryInternal ExamCategory = "INTERNAL"
	CategoryBoth     ExamCategory = "BOTH"
)

// SubjectTrack marks whether a subject is sat by its regular cohort or by arrear students.
type SubjectTrack string

const (
	TrackRegular SubjectTrack = "REGULAR"
	TrackArrear  SubjectTrack = "ARREAR"
)

// ExamSubject is a subject eligible for examination in a cycle.
type ExamSubject struct {
	ID           string         `db:"id" json:"id"`
	Code         string         `db:"code" json:"code"`
	Name         string         `db:"name" json:"name"`
	Department   string         `db:"department" json:"department"`
	Year         int            `db:"year" json:"year"`
	Parity       SemesterParity `db:"parity" json:"parity"`
	Weight       WeightClass    `db:"weight" json:"weight"`
	Category     ExamCategory   `db:"category" json:"category"`
	StudentCount int            `db:"student_count" json:"student_count"`
	Track        SubjectTrack   `db:"track" json:"track"`
}

// IsHeavy reports whether the subject carries the heavy spacing rule.
func (s ExamSubject) IsHeavy() bool {
	return s.Weight == WeightHeavy
}
