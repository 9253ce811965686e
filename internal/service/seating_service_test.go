package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
	"github.com/noah-isme/exam-allocation-api/pkg/jobs"
)

type rosterStub struct {
	bySubject map[string][]models.ExamStudent
	calls     [][2][]string
}

func (s *rosterStub) ListRoster(ctx context.Context, regular, arrear []string) ([]models.ExamStudent, error) {
	s.calls = append(s.calls, [2][]string{regular, arrear})
	seen := make(map[string]struct{})
	var out []models.ExamStudent
	for _, id := range append(append([]string{}, regular...), arrear...) {
		for _, st := range s.bySubject[id] {
			if _, ok := seen[st.ID]; ok {
				continue
			}
			seen[st.ID] = struct{}{}
			out = append(out, st)
		}
	}
	return out, nil
}

type hallListerStub struct{ halls []models.Hall }

func (s hallListerStub) ListActive(ctx context.Context) ([]models.Hall, error) { return s.halls, nil }

type invigilatorListerStub struct{ names []string }

func (s invigilatorListerStub) ListActive(ctx context.Context) ([]models.Invigilator, error) {
	out := make([]models.Invigilator, len(s.names))
	for i, n := range s.names {
		out[i] = models.Invigilator{ID: n, Name: n, Active: true}
	}
	return out, nil
}

type seatingStoreStub struct {
	replaced     map[string][]models.SeatAssignment
	invigilators map[string][]models.InvigilatorAssignment
	order        []string
	stored       *models.SlotSeating
	err          error
}

func (s *seatingStoreStub) ReplaceForSlot(ctx context.Context, exec sqlx.ExtContext, slot models.ExamSlot, seats []models.SeatAssignment, invigilators []models.InvigilatorAssignment) error {
	if s.err != nil {
		return s.err
	}
	if s.replaced == nil {
		s.replaced = make(map[string][]models.SeatAssignment)
		s.invigilators = make(map[string][]models.InvigilatorAssignment)
	}
	s.replaced[slot.Key()] = seats
	s.invigilators[slot.Key()] = invigilators
	s.order = append(s.order, slot.Key())
	return nil
}

func (s *seatingStoreStub) ListBySlot(ctx context.Context, slot models.ExamSlot) (*models.SlotSeating, error) {
	if s.stored == nil {
		return &models.SlotSeating{Slot: slot}, nil
	}
	return s.stored, nil
}

type dispatcherStub struct{ jobs []jobs.Job }

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	d.jobs = append(d.jobs, job)
	return nil
}

type seatingFixture struct {
	svc     *SeatingService
	cycles  *cycleStoreStub
	exams   *examStoreStub
	roster  *rosterStub
	seats   *seatingStoreStub
	metrics *MetricsService
}

func newSeatingFixture(t *testing.T, halls []models.Hall, cfg SeatingConfig) (*seatingFixture, func()) {
	tx, mock := newTxProviderMock(t)
	f := &seatingFixture{
		cycles:  newCycleStoreStub(),
		exams:   newExamStoreStub(),
		roster:  &rosterStub{bySubject: make(map[string][]models.ExamStudent)},
		seats:   &seatingStoreStub{},
		metrics: NewMetricsService(),
	}
	f.svc = NewSeatingService(f.cycles, f.exams, f.roster, hallListerStub{halls: halls},
		invigilatorListerStub{names: []string{"Anand", "Bala"}}, f.seats, tx, nil, f.metrics, nil, cfg)

	mock.ExpectBegin()
	mock.ExpectCommit()
	return f, func() { assert.NoError(t, mock.ExpectationsWereMet()) }
}

func seatingExam(t *testing.T, subjectID, dept, date string, session models.ExamSession, track models.SubjectTrack) models.ScheduledExam {
	return models.ScheduledExam{
		SubjectID:   subjectID,
		SubjectCode: subjectID,
		Department:  dept,
		ExamDate:    mustDate(t, date),
		Session:     session,
		Track:       track,
	}
}

func studentsOf(dept string, n int) []models.ExamStudent {
	return rosterOf(map[string]int{dept: n})
}

func TestGroupBySlotOrdersByDateThenSession(t *testing.T) {
	groups := GroupBySlot([]models.ScheduledExam{
		seatingExam(t, "B", "ECE", "17.12.2025", models.SessionForenoon, models.TrackRegular),
		seatingExam(t, "C", "CSE", "16.12.2025", models.SessionAfternoon, models.TrackRegular),
		seatingExam(t, "A", "CSE", "16.12.2025", models.SessionForenoon, models.TrackRegular),
		seatingExam(t, "D", "MECH", "16.12.2025", models.SessionForenoon, models.TrackArrear),
	})
	require.Len(t, groups, 3)
	assert.Equal(t, "2025-12-16/FN", groups[0].Slot.Key())
	assert.Len(t, groups[0].Exams, 2)
	assert.Equal(t, "2025-12-16/AN", groups[1].Slot.Key())
	assert.Equal(t, "2025-12-17/FN", groups[2].Slot.Key())
}

func TestSeatingServiceAllocateCycle(t *testing.T) {
	f, verify := newSeatingFixture(t, hallsOf(30, 30, 30), SeatingConfig{})
	defer verify()

	f.cycles.items["c1"] = &models.ExamCycle{ID: "c1", Category: models.CategorySemester, Status: models.ExamCycleStatusPending}
	f.exams.exams["c1"] = []models.ScheduledExam{
		seatingExam(t, "CS301", "CSE", "16.12.2025", models.SessionForenoon, models.TrackRegular),
		seatingExam(t, "EC301", "ECE", "16.12.2025", models.SessionForenoon, models.TrackRegular),
		seatingExam(t, "ME202", "MECH", "16.12.2025", models.SessionAfternoon, models.TrackArrear),
	}
	f.roster.bySubject["CS301"] = studentsOf("CSE", 20)
	f.roster.bySubject["EC301"] = studentsOf("ECE", 20)
	f.roster.bySubject["ME202"] = studentsOf("MECH", 5)

	result, err := f.svc.AllocateCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.OccupancyOnePerBench, result.Mode)
	require.Len(t, result.Slots, 2)
	assert.Equal(t, 40, result.Slots[0].Seated)
	assert.Equal(t, 2, result.Slots[0].HallsUsed)
	assert.Equal(t, 5, result.Slots[1].Seated)
	assert.Zero(t, result.Slots[1].Unseated)

	assert.Equal(t, []string{"2025-12-16/FN", "2025-12-16/AN"}, f.seats.order)
	assert.Equal(t, []string{"ME202"}, f.roster.calls[1][1])
	assert.Empty(t, f.roster.calls[1][0])
	assert.Equal(t, models.ExamCycleStatusCompleted, f.cycles.items["c1"].Status)
	assert.Equal(t, uint64(45), f.metrics.Snapshot().SeatsAssigned)
}

func TestSeatingServiceReportsShortfall(t *testing.T) {
	f, verify := newSeatingFixture(t, hallsOf(5), SeatingConfig{})
	defer verify()

	f.cycles.items["c1"] = &models.ExamCycle{ID: "c1", Category: models.CategoryInternal, Status: models.ExamCycleStatusPending}
	f.exams.exams["c1"] = []models.ScheduledExam{
		seatingExam(t, "CS301", "CSE", "16.12.2025", models.SessionForenoon, models.TrackRegular),
	}
	f.roster.bySubject["CS301"] = studentsOf("CSE", 12)

	result, err := f.svc.AllocateCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.OccupancyTwoPerBench, result.Mode)
	require.Len(t, result.Slots, 1)
	assert.Equal(t, 10, result.Slots[0].Seated)
	assert.Equal(t, 2, result.Slots[0].Unseated)
	assert.Equal(t, uint64(2), f.metrics.Snapshot().StudentsUnseated)
}

func TestSeatingServiceAllocateCycleUsesSelectedHallsAndTeachers(t *testing.T) {
	f, verify := newSeatingFixture(t, hallsOf(30, 30, 30), SeatingConfig{})
	defer verify()

	f.cycles.items["c1"] = &models.ExamCycle{ID: "c1", Category: models.CategorySemester, Status: models.ExamCycleStatusPending}
	f.exams.exams["c1"] = []models.ScheduledExam{
		seatingExam(t, "CS301", "CSE", "16.12.2025", models.SessionForenoon, models.TrackRegular),
	}
	f.roster.bySubject["CS301"] = studentsOf("CSE", 40)

	result, err := f.svc.AllocateCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{
		HallIDs:    []string{"hall-3"},
		TeacherIDs: []string{"Bala"},
	})
	require.NoError(t, err)
	require.Len(t, result.Slots, 1)
	assert.Equal(t, 1, result.Slots[0].HallsUsed)
	assert.Equal(t, 30, result.Slots[0].Seated)
	assert.Equal(t, 10, result.Slots[0].Unseated)

	seats := f.seats.replaced["2025-12-16/FN"]
	require.Len(t, seats, 30)
	for _, seat := range seats {
		assert.Equal(t, "hall-3", seat.HallID)
	}
	require.Len(t, f.seats.invigilators["2025-12-16/FN"], 1)
	assert.Equal(t, "Bala", f.seats.invigilators["2025-12-16/FN"][0].Teacher)
}

func TestSeatingServiceAllocateCycleRejectsUnknownSelection(t *testing.T) {
	f, _ := newSeatingFixture(t, hallsOf(30), SeatingConfig{})
	f.cycles.items["c1"] = &models.ExamCycle{ID: "c1", Category: models.CategorySemester}
	f.exams.exams["c1"] = []models.ScheduledExam{
		seatingExam(t, "CS301", "CSE", "16.12.2025", models.SessionForenoon, models.TrackRegular),
	}

	_, err := f.svc.AllocateCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{HallIDs: []string{"hall-9"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "hall-9")

	_, err = f.svc.AllocateCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{TeacherIDs: []string{"Uma"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Uma")

	_, err = f.svc.AllocateCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{HallIDs: []string{"hall-1", "hall-1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeatingServiceAllocateCycleErrors(t *testing.T) {
	f, _ := newSeatingFixture(t, hallsOf(5), SeatingConfig{})

	_, err := f.svc.AllocateCycle(context.Background(), "missing", dto.AllocateCycleSeatingRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	f.cycles.items["empty"] = &models.ExamCycle{ID: "empty", Category: models.CategorySemester}
	_, err = f.svc.AllocateCycle(context.Background(), "empty", dto.AllocateCycleSeatingRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = f.svc.AllocateCycle(context.Background(), "empty", dto.AllocateCycleSeatingRequest{Mode: "THREE_PER_BENCH"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeatingServiceEnqueueCycle(t *testing.T) {
	f, _ := newSeatingFixture(t, nil, SeatingConfig{Async: true})
	f.cycles.items["c1"] = &models.ExamCycle{ID: "c1", Category: models.CategoryInternal}

	_, err := f.svc.EnqueueCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{})
	require.Error(t, err)
	assert.False(t, f.svc.Async())

	dispatcher := &dispatcherStub{}
	f.svc.UseDispatcher(dispatcher)
	assert.True(t, f.svc.Async())

	resp, err := f.svc.EnqueueCycle(context.Background(), "c1", dto.AllocateCycleSeatingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "QUEUED", resp.Status)
	assert.Equal(t, models.OccupancyTwoPerBench, resp.Mode)
	require.Len(t, dispatcher.jobs, 1)
	assert.Equal(t, JobTypeCycleSeating, dispatcher.jobs[0].Type)
	assert.Equal(t, SeatingJobPayload{CycleID: "c1", Mode: models.OccupancyTwoPerBench}, dispatcher.jobs[0].Payload)
	assert.Equal(t, resp.JobID, dispatcher.jobs[0].ID)
}

type seaterStub struct {
	err     error
	cycleID string
	req     dto.AllocateCycleSeatingRequest
}

func (s *seaterStub) AllocateCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.CycleSeatingResult, error) {
	s.cycleID, s.req = cycleID, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CycleSeatingResult{CycleID: cycleID, Mode: req.Mode}, nil
}

func TestSeatingWorkerHandle(t *testing.T) {
	seater := &seaterStub{}
	worker := NewSeatingWorker(seater, nil)

	require.NoError(t, worker.Handle(context.Background(), jobs.NewJob(JobTypeCycleSeating, SeatingJobPayload{CycleID: "c1", HallIDs: []string{"h1"}, TeacherIDs: []string{"t2", "t1"}})))
	assert.Equal(t, "c1", seater.cycleID)
	assert.Equal(t, []string{"h1"}, seater.req.HallIDs)
	assert.Equal(t, []string{"t2", "t1"}, seater.req.TeacherIDs)

	seater.err = appErrors.Clone(appErrors.ErrNotFound, "exam cycle not found")
	assert.NoError(t, worker.Handle(context.Background(), jobs.NewJob(JobTypeCycleSeating, &SeatingJobPayload{CycleID: "c2"})))

	seater.err = errors.New("db down")
	assert.Error(t, worker.Handle(context.Background(), jobs.NewJob(JobTypeCycleSeating, SeatingJobPayload{CycleID: "c3"})))

	assert.NoError(t, worker.Handle(context.Background(), jobs.NewJob(JobTypeCycleSeating, "garbage")))
}

func TestSeatingServicePreview(t *testing.T) {
	f, _ := newSeatingFixture(t, nil, SeatingConfig{Seed: 7})
	req := dto.SeatingPreviewRequest{
		Date:     "16.12.2025",
		Session:  models.SessionForenoon,
		Mode:     models.OccupancyTwoPerBench,
		Students: rosterOf(map[string]int{"CSE": 6, "ECE": 6}),
		Halls:    hallsOf(4, 4),
		Teachers: []string{"Anand"},
	}

	first, err := f.svc.Preview(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Len(t, first.Assignments, 12)
	require.Len(t, first.Invigilators, 2)
	assert.True(t, first.Invigilators[1].Pending)
	assert.Empty(t, f.seats.order)

	req.Mode = "SOMETIMES"
	_, err = f.svc.Preview(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeatingServiceGetSlotSeating(t *testing.T) {
	f, _ := newSeatingFixture(t, nil, SeatingConfig{})

	_, err := f.svc.GetSlotSeating(context.Background(), dto.SlotSeatingQuery{Date: "16.12.2025", Session: models.SessionForenoon})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	f.seats.stored = &models.SlotSeating{Assignments: []models.SeatAssignment{{StudentID: "s1"}}}
	seating, err := f.svc.GetSlotSeating(context.Background(), dto.SlotSeatingQuery{Date: "16.12.2025", Session: models.SessionForenoon})
	require.NoError(t, err)
	assert.Len(t, seating.Assignments, 1)

	_, err = f.svc.GetSlotSeating(context.Background(), dto.SlotSeatingQuery{Date: "16.12.2025", Session: "EVENING"})
	require.Error(t, err)
}
