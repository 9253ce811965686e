package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/models"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
)

// ScheduleInput carries everything a placement strategy needs. Subjects must
// already be in priority order; Secondary is only read by round-robin.
type ScheduleInput struct {
	Policy    models.SchedulingPolicy
	Dates     []time.Time
	Subjects  []models.ExamSubject
	Secondary []models.ExamSubject
}

// ScheduleResult is a best-effort schedule plus the soft failures met on the way.
type ScheduleResult struct {
	Policy         models.SchedulingPolicy    `json:"policy"`
	SessionsPerDay int                        `json:"sessions_per_day"`
	Exams          []models.ScheduledExam     `json:"exams"`
	Violations     []models.ScheduleViolation `json:"violations"`
	Unscheduled    []models.ExamSubject       `json:"unscheduled"`
}

type placementStrategy interface {
	place(in ScheduleInput) (*ScheduleResult, error)
}

// ExamScheduler maps subjects onto (date, session) slots using one of the
// registered placement strategies.
type ExamScheduler struct {
	logger     *zap.Logger
	strategies map[models.SchedulingPolicy]placementStrategy
}

// NewExamScheduler wires the three placement strategies.
func NewExamScheduler(logger *zap.Logger) *ExamScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamScheduler{
		logger: logger,
		strategies: map[models.SchedulingPolicy]placementStrategy{
			models.PolicyGapConstrained: gapConstrainedStrategy{logger: logger},
			models.PolicyRoundRobin:     roundRobinStrategy{},
			models.PolicyFixedSlot:      fixedSlotStrategy{},
		},
	}
}

// Schedule runs the strategy selected by in.Policy.
func (s *ExamScheduler) Schedule(in ScheduleInput) (*ScheduleResult, error) {
	strategy, ok := s.strategies[in.Policy]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown scheduling policy %q", in.Policy))
	}
	if len(in.Dates) == 0 {
		return nil, appErrors.ErrNoAvailableDates
	}
	if len(in.Subjects) == 0 && len(in.Secondary) == 0 {
		return nil, appErrors.ErrNoSubjects
	}

	result, err := strategy.place(in)
	if err != nil {
		return nil, err
	}
	result.Policy = in.Policy
	sortExams(result.Exams)

	s.logger.Debug("exam schedule placed",
		zap.String("policy", string(in.Policy)),
		zap.Int("exams", len(result.Exams)),
		zap.Int("violations", len(result.Violations)),
		zap.Int("unscheduled", len(result.Unscheduled)),
	)
	return result, nil
}

// --- shared primitives ---

func candidateSlots(dates []time.Time, sessions []models.ExamSession) []models.ExamSlot {
	slots := make([]models.ExamSlot, 0, len(dates)*len(sessions))
	for _, d := range dates {
		for _, session := range sessions {
			slots = append(slots, models.ExamSlot{Date: calendarDay(d), Session: session})
		}
	}
	return slots
}

func newScheduledExam(subject models.ExamSubject, slot models.ExamSlot) models.ScheduledExam {
	return models.ScheduledExam{
		ID:           uuid.NewString(),
		SubjectID:    subject.ID,
		SubjectCode:  subject.Code,
		SubjectName:  subject.Name,
		Department:   subject.Department,
		ExamDate:     slot.Date,
		Session:      slot.Session,
		Weight:       subject.Weight,
		Parity:       subject.Parity,
		Track:        subject.Track,
		StudentCount: subject.StudentCount,
	}
}

func sortExams(exams []models.ScheduledExam) {
	sort.SliceStable(exams, func(i, j int) bool {
		a, b := exams[i].Slot(), exams[j].Slot()
		if a.Key() != b.Key() {
			return a.Before(b)
		}
		if exams[i].Department != exams[j].Department {
			return exams[i].Department < exams[j].Department
		}
		return exams[i].SubjectCode < exams[j].SubjectCode
	})
}

// groupByDepartment keeps each department's subjects in input order and
// returns the department names sorted.
func groupByDepartment(subjects []models.ExamSubject) (map[string][]models.ExamSubject, []string) {
	groups := make(map[string][]models.ExamSubject)
	for _, subject := range subjects {
		groups[subject.Department] = append(groups[subject.Department], subject)
	}
	departments := make([]string, 0, len(groups))
	for dept := range groups {
		departments = append(departments, dept)
	}
	sort.Strings(departments)
	return groups, departments
}

func maxGroupSize(groups map[string][]models.ExamSubject) int {
	max := 0
	for _, group := range groups {
		if len(group) > max {
			max = len(group)
		}
	}
	return max
}

// departmentTimeline tracks each department's placed exams in slot order.
type departmentTimeline struct {
	exams map[string][]models.ScheduledExam
}

func newDepartmentTimeline() *departmentTimeline {
	return &departmentTimeline{exams: make(map[string][]models.ScheduledExam)}
}

func (t *departmentTimeline) add(exam models.ScheduledExam) {
	list := append(t.exams[exam.Department], exam)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Slot().Before(list[j].Slot()) })
	t.exams[exam.Department] = list
}

func (t *departmentTimeline) usesDate(dept string, date time.Time) bool {
	for _, exam := range t.exams[dept] {
		if exam.ExamDate.Equal(date) {
			return true
		}
	}
	return false
}

func (t *departmentTimeline) usesSlot(dept string, slot models.ExamSlot) bool {
	for _, exam := range t.exams[dept] {
		if exam.Slot().Key() == slot.Key() {
			return true
		}
	}
	return false
}

// neighbours returns the department's exams immediately before and after slot.
func (t *departmentTimeline) neighbours(dept string, slot models.ExamSlot) (prev, next *models.ScheduledExam) {
	list := t.exams[dept]
	for i := range list {
		if list[i].Slot().Before(slot) {
			prev = &list[i]
			continue
		}
		next = &list[i]
		break
	}
	return prev, next
}

// --- policy a: gap constrained ---

type gapConstrainedStrategy struct {
	logger *zap.Logger
}

func (g gapConstrainedStrategy) place(in ScheduleInput) (*ScheduleResult, error) {
	slots := candidateSlots(in.Dates, []models.ExamSession{models.SessionForenoon, models.SessionAfternoon})
	timeline := newDepartmentTimeline()
	result := &ScheduleResult{SessionsPerDay: 2}

	for _, subject := range in.Subjects {
		var (
			chosen   *models.ExamSlot
			fallback *models.ExamSlot
			reason   string
		)
		for i := range slots {
			slot := slots[i]
			if timeline.usesDate(subject.Department, slot.Date) {
				continue
			}
			ok, why := gapAllowsSlot(timeline, subject, slot)
			if ok {
				chosen = &slot
				break
			}
			if fallback == nil {
				fallback = &slot
				reason = why
			}
		}

		switch {
		case chosen != nil:
		case fallback != nil:
			chosen = fallback
			result.Violations = append(result.Violations, models.ScheduleViolation{
				SubjectID:   subject.ID,
				SubjectCode: subject.Code,
				Department:  subject.Department,
				Kind:        models.ViolationGapConstraint,
				Severity:    models.SeverityMedium,
				Description: fmt.Sprintf("%s placed on %s %s without required gap: %s", subject.Code, FormatExamDate(fallback.Date), fallback.Session, reason),
			})
			g.logger.Debug("gap rule relaxed", zap.String("subject", subject.Code), zap.String("reason", reason))
		default:
			return nil, appErrors.Clone(appErrors.ErrNoSlotAvailable, fmt.Sprintf("no slot available for %s (%s): every date already holds an exam of the department", subject.Code, subject.Department))
		}

		exam := newScheduledExam(subject, *chosen)
		timeline.add(exam)
		result.Exams = append(result.Exams, exam)
	}
	return result, nil
}

// gapAllowsSlot checks the candidate against the department's neighbouring
// exams on both sides, not only the last one placed. Placement walks slots in
// order, so a later slot can land before an earlier exam when the gap rule
// skipped dates; checking the following exam keeps its gap intact too.
func gapAllowsSlot(timeline *departmentTimeline, subject models.ExamSubject, slot models.ExamSlot) (bool, string) {
	prev, next := timeline.neighbours(subject.Department, slot)
	if prev != nil {
		if ok, why := gapAllows(prev.Weight, prev.SubjectCode, prev.Slot(), slot); !ok {
			return false, why
		}
	}
	if next != nil {
		if ok, why := gapAllows(subject.Weight, subject.Code, slot, next.Slot()); !ok {
			return false, why
		}
	}
	return true, ""
}

// gapAllows reports whether an exam at later may follow one of the given
// weight at earlier.
func gapAllows(weight models.WeightClass, code string, earlier, later models.ExamSlot) (bool, string) {
	days := daysBetween(earlier.Date, later.Date)
	if weight == models.WeightHeavy && days < 2 {
		return false, fmt.Sprintf("heavy subject %s on %s needs a two day gap", code, FormatExamDate(earlier.Date))
	}
	if weight == models.WeightNonMajor && days == 0 && earlier.Session == later.Session {
		return false, fmt.Sprintf("%s already holds the %s session on %s", code, earlier.Session, FormatExamDate(earlier.Date))
	}
	if earlier.Session == models.SessionAfternoon && days == 1 && later.Session == models.SessionForenoon {
		return false, fmt.Sprintf("%s sits the afternoon before on %s", code, FormatExamDate(earlier.Date))
	}
	return true, ""
}

// --- policy b: round robin ---

type roundRobinStrategy struct{}

func (roundRobinStrategy) place(in ScheduleInput) (*ScheduleResult, error) {
	primary, primaryDepts := groupPositions(in.Subjects)
	secondary, secondaryDepts := groupPositions(in.Secondary)
	primaryMax, secondaryMax := maxPositions(primary), maxPositions(secondary)

	rounds := primaryMax
	if secondaryMax > rounds {
		rounds = secondaryMax
	}

	result := &ScheduleResult{SessionsPerDay: 1}
	// Indexed per pool: a semester arrear row and its regular twin share an ID.
	placed := [2][]bool{make([]bool, len(in.Subjects)), make([]bool, len(in.Secondary))}
	pools := [2][]models.ExamSubject{in.Subjects, in.Secondary}
	next := 0

	placeRound := func(round, pool int, groups map[string][]int, depts []string) bool {
		if next >= len(in.Dates) {
			return false
		}
		slot := models.ExamSlot{Date: calendarDay(in.Dates[next]), Session: models.SessionForenoon}
		next++
		for _, dept := range depts {
			group := groups[dept]
			if round >= len(group) {
				continue
			}
			idx := group[round]
			result.Exams = append(result.Exams, newScheduledExam(pools[pool][idx], slot))
			placed[pool][idx] = true
		}
		return true
	}

	for round := 0; round < rounds; round++ {
		if round < primaryMax && !placeRound(round, 0, primary, primaryDepts) {
			break
		}
		if round < secondaryMax && !placeRound(round, 1, secondary, secondaryDepts) {
			break
		}
	}

	for pool, subjects := range pools {
		for i, subject := range subjects {
			if !placed[pool][i] {
				result.Unscheduled = append(result.Unscheduled, subject)
			}
		}
	}
	return result, nil
}

// groupPositions is groupByDepartment over indexes into subjects.
func groupPositions(subjects []models.ExamSubject) (map[string][]int, []string) {
	groups := make(map[string][]int)
	for i, subject := range subjects {
		groups[subject.Department] = append(groups[subject.Department], i)
	}
	departments := make([]string, 0, len(groups))
	for dept := range groups {
		departments = append(departments, dept)
	}
	sort.Strings(departments)
	return groups, departments
}

func maxPositions(groups map[string][]int) int {
	max := 0
	for _, group := range groups {
		if len(group) > max {
			max = len(group)
		}
	}
	return max
}

// --- policy c: fixed slot ---

type fixedSlotStrategy struct{}

func (fixedSlotStrategy) place(in ScheduleInput) (*ScheduleResult, error) {
	groups, _ := groupByDepartment(in.Subjects)
	maxPerDept := maxGroupSize(groups)

	sessions := []models.ExamSession{models.SessionForenoon}
	if len(in.Dates) < maxPerDept {
		sessions = append(sessions, models.SessionAfternoon)
	}
	minDates := (maxPerDept + len(sessions) - 1) / len(sessions)
	if len(in.Dates) < minDates {
		return nil, appErrors.Clone(appErrors.ErrInsufficientDates, fmt.Sprintf("insufficient exam dates: need at least %d dates for %d exams per department, have %d", minDates, maxPerDept, len(in.Dates)))
	}

	result := placeFixedSlots(in.Subjects, candidateSlots(in.Dates, sessions))
	result.SessionsPerDay = len(sessions)
	return result, nil
}

// placeFixedSlots gives each subject the first slot its department has not used.
func placeFixedSlots(subjects []models.ExamSubject, slots []models.ExamSlot) *ScheduleResult {
	timeline := newDepartmentTimeline()
	result := &ScheduleResult{}
	for _, subject := range subjects {
		placed := false
		for _, slot := range slots {
			if timeline.usesSlot(subject.Department, slot) {
				continue
			}
			exam := newScheduledExam(subject, slot)
			timeline.add(exam)
			result.Exams = append(result.Exams, exam)
			placed = true
			break
		}
		if placed {
			continue
		}
		result.Unscheduled = append(result.Unscheduled, subject)
		result.Violations = append(result.Violations, models.ScheduleViolation{
			SubjectID:   subject.ID,
			SubjectCode: subject.Code,
			Department:  subject.Department,
			Kind:        models.ViolationNoSlotAvailable,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("no free slot left for %s in department %s", subject.Code, subject.Department),
		})
	}
	return result
}
