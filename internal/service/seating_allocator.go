package service

import (
	"math/rand"
	"sort"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// DefaultSeatingSeed keeps allocations reproducible when no seed is configured.
const DefaultSeatingSeed int64 = 42

// SeatingInput is the roster and room catalog for one exam slot.
type SeatingInput struct {
	Slot     models.ExamSlot
	Roster   []models.ExamStudent
	Halls    []models.Hall
	Teachers []string
	Mode     models.OccupancyMode
}

// SeatingPlan is the outcome of one allocation run. Unseated > 0 signals that
// the hall catalog could not hold the roster.
type SeatingPlan struct {
	Slot            models.ExamSlot                `json:"slot"`
	Mode            models.OccupancyMode           `json:"mode"`
	RosterSize      int                            `json:"roster_size"`
	Unseated        int                            `json:"unseated"`
	Halls           []models.HallOccupancy         `json:"halls"`
	Assignments     []models.SeatAssignment        `json:"assignments"`
	Invigilators    []models.InvigilatorAssignment `json:"invigilators"`
	ReserveTeachers []string                       `json:"reserve_teachers"`
}

// SeatingAllocator selects halls and fills benches so that each hall mixes departments.
type SeatingAllocator struct {
	seed int64
}

// NewSeatingAllocator returns an allocator whose runs are reproducible for a given seed.
func NewSeatingAllocator(seed int64) *SeatingAllocator {
	return &SeatingAllocator{seed: seed}
}

// Allocate seats the roster with a fresh source seeded from the allocator seed,
// so the same input always yields the same plan.
func (a *SeatingAllocator) Allocate(in SeatingInput) *SeatingPlan {
	return a.AllocateWith(in, rand.New(rand.NewSource(a.seed)))
}

// AllocateWith seats the roster drawing randomness from rng.
func (a *SeatingAllocator) AllocateWith(in SeatingInput, rng *rand.Rand) *SeatingPlan {
	mode := in.Mode
	if mode != models.OccupancyTwoPerBench {
		mode = models.OccupancyOnePerBench
	}

	plan := &SeatingPlan{Slot: in.Slot, Mode: mode, RosterSize: len(in.Roster)}
	selected := SelectHalls(in.Halls, len(in.Roster), mode)

	fill := newBenchFiller(in.Roster, rng)
	used := make([]models.Hall, 0, len(selected))
	for _, hall := range selected {
		occupancy := fill.fillHall(hall, mode, in.Slot, &plan.Assignments)
		if occupancy.Seated == 0 {
			continue
		}
		plan.Halls = append(plan.Halls, occupancy)
		used = append(used, hall)
	}
	plan.Unseated = plan.RosterSize - len(plan.Assignments)
	plan.Invigilators, plan.ReserveTeachers = AssignInvigilators(in.Slot, used, in.Teachers)
	return plan
}

// SelectHalls sorts halls by effective capacity and takes them in order until
// the roster fits. When the whole catalog is too small every hall is returned.
func SelectHalls(halls []models.Hall, rosterSize int, mode models.OccupancyMode) []models.Hall {
	sorted := make([]models.Hall, 0, len(halls))
	for _, hall := range halls {
		if hall.Capacity > 0 {
			sorted = append(sorted, hall)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].EffectiveCapacity(mode), sorted[j].EffectiveCapacity(mode)
		if ci != cj {
			return ci < cj
		}
		return sorted[i].Name < sorted[j].Name
	})
	if rosterSize <= 0 {
		return nil
	}

	total := 0
	for i, hall := range sorted {
		total += hall.EffectiveCapacity(mode)
		if total >= rosterSize {
			return sorted[:i+1]
		}
	}
	return sorted
}

// benchFiller hands out students department by department.
type benchFiller struct {
	rng         *rand.Rand
	departments []string
	pools       map[string][]models.ExamStudent
}

func newBenchFiller(roster []models.ExamStudent, rng *rand.Rand) *benchFiller {
	pools := make(map[string][]models.ExamStudent)
	for _, student := range roster {
		pools[student.Department] = append(pools[student.Department], student)
	}
	departments := make([]string, 0, len(pools))
	for dept := range pools {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	for _, dept := range departments {
		pool := pools[dept]
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].RegisterNumber < pool[j].RegisterNumber })
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	return &benchFiller{rng: rng, departments: departments, pools: pools}
}

func (f *benchFiller) remaining() []string {
	out := make([]string, 0, len(f.departments))
	for _, dept := range f.departments {
		if len(f.pools[dept]) > 0 {
			out = append(out, dept)
		}
	}
	return out
}

// pickDepartment prefers departments not yet seated in the hall until it holds
// two, and a department other than avoid for a bench-mate.
func (f *benchFiller) pickDepartment(inHall map[string]int, avoid string) string {
	candidates := f.remaining()
	if len(candidates) == 0 {
		return ""
	}
	if len(inHall) < 2 {
		fresh := make([]string, 0, len(candidates))
		for _, dept := range candidates {
			if _, seen := inHall[dept]; !seen {
				fresh = append(fresh, dept)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		}
	}
	if avoid != "" {
		others := make([]string, 0, len(candidates))
		for _, dept := range candidates {
			if dept != avoid {
				others = append(others, dept)
			}
		}
		if len(others) > 0 {
			candidates = others
		}
	}
	return candidates[f.rng.Intn(len(candidates))]
}

func (f *benchFiller) take(dept string) models.ExamStudent {
	pool := f.pools[dept]
	student := pool[0]
	f.pools[dept] = pool[1:]
	return student
}

func (f *benchFiller) fillHall(hall models.Hall, mode models.OccupancyMode, slot models.ExamSlot, out *[]models.SeatAssignment) models.HallOccupancy {
	occupancy := models.HallOccupancy{
		HallID:      hall.ID,
		HallName:    hall.Name,
		Capacity:    hall.EffectiveCapacity(mode),
		Departments: make(map[string]int),
	}
	sides := []models.BenchSide{models.BenchSideNone}
	if mode == models.OccupancyTwoPerBench {
		sides = []models.BenchSide{models.BenchSideLeft, models.BenchSideRight}
	}

	seat := 0
	for bench := 1; bench <= hall.Capacity; bench++ {
		avoid := ""
		for _, side := range sides {
			dept := f.pickDepartment(occupancy.Departments, avoid)
			if dept == "" {
				return occupancy
			}
			student := f.take(dept)
			seat++
			*out = append(*out, models.SeatAssignment{
				ExamDate:       slot.Date,
				Session:        slot.Session,
				HallID:         hall.ID,
				HallName:       hall.Name,
				Bench:          bench,
				Side:           side,
				SeatNumber:     seat,
				StudentID:      student.ID,
				RegisterNumber: student.RegisterNumber,
				StudentName:    student.Name,
				Department:     student.Department,
			})
			occupancy.Departments[dept]++
			occupancy.Seated++
			avoid = dept
		}
	}
	return occupancy
}
