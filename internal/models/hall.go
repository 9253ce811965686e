package models

// OccupancyMode sets how many students share a bench.
type OccupancyMode string

const (
	OccupancyOnePerBench OccupancyMode = "ONE_PER_BENCH"
	OccupancyTwoPerBench OccupancyMode = "TWO_PER_BENCH"
)

// SeatsPerBench returns 2 for two-per-bench seating and 1 otherwise.
func (m OccupancyMode) SeatsPerBench() int {
	if m == OccupancyTwoPerBench {
		return 2
	}
	return 1
}

// DefaultOccupancy maps an exam category to its usual seating density.
func DefaultOccupancy(category ExamCategory) OccupancyMode {
	if category == CategoryInternal {
		return OccupancyTwoPerBench
	}
	return OccupancyOnePerBench
}

// Hall is an exam room. Capacity counts benches.
type Hall struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
	Columns  int    `db:"columns" json:"columns"`
	Active   bool   `db:"active" json:"active"`
}

// EffectiveCapacity is the number of students the hall seats under mode.
func (h Hall) EffectiveCapacity(mode OccupancyMode) int {
	return h.Capacity * mode.SeatsPerBench()
}
