package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
	"github.com/noah-isme/exam-allocation-api/pkg/jobs"
)

// JobTypeCycleSeating identifies queued cycle seating runs.
const JobTypeCycleSeating = "exam_cycle_seating"

type seatingCycleStore interface {
	FindByID(ctx context.Context, id string) (*models.ExamCycle, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.ExamCycleStatus) error
}

type cycleExamLister interface {
	ListByCycle(ctx context.Context, cycleID string) ([]models.ScheduledExam, error)
}

type rosterLister interface {
	ListRoster(ctx context.Context, regularSubjectIDs, arrearSubjectIDs []string) ([]models.ExamStudent, error)
}

type hallLister interface {
	ListActive(ctx context.Context) ([]models.Hall, error)
}

type invigilatorLister interface {
	ListActive(ctx context.Context) ([]models.Invigilator, error)
}

type seatingStore interface {
	ReplaceForSlot(ctx context.Context, exec sqlx.ExtContext, slot models.ExamSlot, seats []models.SeatAssignment, invigilators []models.InvigilatorAssignment) error
	ListBySlot(ctx context.Context, slot models.ExamSlot) (*models.SlotSeating, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// SeatingConfig controls allocation behaviour.
type SeatingConfig struct {
	Seed  int64
	Async bool
}

// SlotExams groups the exams sitting in one slot.
type SlotExams struct {
	Slot  models.ExamSlot
	Exams []models.ScheduledExam
}

// SeatingJobPayload is carried by queued cycle seating jobs.
type SeatingJobPayload struct {
	CycleID    string
	Mode       models.OccupancyMode
	HallIDs    []string
	TeacherIDs []string
}

func (p SeatingJobPayload) request() dto.AllocateCycleSeatingRequest {
	return dto.AllocateCycleSeatingRequest{Mode: p.Mode, HallIDs: p.HallIDs, TeacherIDs: p.TeacherIDs}
}

// SeatingService seats every slot of a committed exam cycle.
type SeatingService struct {
	cycles       seatingCycleStore
	exams        cycleExamLister
	roster       rosterLister
	halls        hallLister
	invigilators invigilatorLister
	seats        seatingStore
	tx           txProvider
	allocator    *SeatingAllocator
	dispatcher   jobDispatcher
	validator    *validator.Validate
	metrics      *MetricsService
	logger       *zap.Logger
	async        bool
}

// NewSeatingService wires seating dependencies.
func NewSeatingService(
	cycles seatingCycleStore,
	exams cycleExamLister,
	roster rosterLister,
	halls hallLister,
	invigilators invigilatorLister,
	seats seatingStore,
	tx txProvider,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg SeatingConfig,
) *SeatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeatingSeed
	}
	return &SeatingService{
		cycles:       cycles,
		exams:        exams,
		roster:       roster,
		halls:        halls,
		invigilators: invigilators,
		seats:        seats,
		tx:           tx,
		allocator:    NewSeatingAllocator(cfg.Seed),
		validator:    validate,
		metrics:      metrics,
		logger:       logger,
		async:        cfg.Async,
	}
}

// UseDispatcher attaches the queue that runs asynchronous seating jobs.
func (s *SeatingService) UseDispatcher(dispatcher jobDispatcher) {
	s.dispatcher = dispatcher
}

// Async reports whether cycle seating should go through the queue.
func (s *SeatingService) Async() bool {
	return s.async && s.dispatcher != nil
}

// GroupBySlot buckets exams by slot, ordered by date then session.
func GroupBySlot(exams []models.ScheduledExam) []SlotExams {
	index := make(map[string]int)
	var groups []SlotExams
	for _, exam := range exams {
		slot := exam.Slot()
		i, ok := index[slot.Key()]
		if !ok {
			i = len(groups)
			index[slot.Key()] = i
			groups = append(groups, SlotExams{Slot: slot})
		}
		groups[i].Exams = append(groups[i].Exams, exam)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Slot.Before(groups[j].Slot) })
	return groups
}

// AllocateCycle seats every slot of a cycle and marks it completed. Halls that
// cannot hold a slot's roster leave students unseated; that is reported, not failed.
func (s *SeatingService) AllocateCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.CycleSeatingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seating payload")
	}
	cycle, err := s.loadCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = models.DefaultOccupancy(cycle.Category)
	}
	if mode != models.OccupancyOnePerBench && mode != models.OccupancyTwoPerBench {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown occupancy mode %q", mode))
	}

	exams, err := s.exams.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle exams")
	}
	if len(exams) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam cycle has no scheduled exams")
	}
	halls, err := s.halls.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load halls")
	}
	if halls, err = selectHallsByID(halls, req.HallIDs); err != nil {
		return nil, err
	}
	staff, err := s.invigilators.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invigilators")
	}
	if staff, err = selectInvigilatorsByID(staff, req.TeacherIDs); err != nil {
		return nil, err
	}
	teachers := make([]string, 0, len(staff))
	for _, t := range staff {
		teachers = append(teachers, t.Name)
	}

	plans := make([]*SeatingPlan, 0)
	result := &dto.CycleSeatingResult{CycleID: cycleID, Mode: mode, Status: models.ExamCycleStatusCompleted}
	for _, group := range GroupBySlot(exams) {
		regular, arrear := SubjectIDsByTrack(group.Exams)
		roster, err := s.roster.ListRoster(ctx, regular, arrear)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load roster for %s", group.Slot.Key()))
		}
		plan := s.allocator.Allocate(SeatingInput{
			Slot:     group.Slot,
			Roster:   roster,
			Halls:    halls,
			Teachers: teachers,
			Mode:     mode,
		})
		plans = append(plans, plan)
		result.Slots = append(result.Slots, SummarizeSlot(group, plan))

		s.metrics.ObserveSeating(mode, len(plan.Assignments), plan.Unseated)
		if plan.Unseated > 0 {
			s.logger.Warn("insufficient hall capacity",
				zap.String("cycle_id", cycleID),
				zap.String("slot", group.Slot.Key()),
				zap.Int("roster", plan.RosterSize),
				zap.Int("unseated", plan.Unseated),
			)
		}
	}

	if err := s.persist(ctx, cycle, plans); err != nil {
		return nil, err
	}

	s.logger.Info("exam cycle seated",
		zap.String("cycle_id", cycleID),
		zap.String("mode", string(mode)),
		zap.Int("slots", len(plans)),
	)
	return result, nil
}

// selectHallsByID keeps the requested halls in request order. Every ID must
// name an active hall.
func selectHallsByID(halls []models.Hall, ids []string) ([]models.Hall, error) {
	if len(ids) == 0 {
		return halls, nil
	}
	byID := make(map[string]models.Hall, len(halls))
	for _, h := range halls {
		byID[h.ID] = h
	}
	selected := make([]models.Hall, 0, len(ids))
	for _, id := range ids {
		hall, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("hall %s is not an active hall", id))
		}
		selected = append(selected, hall)
	}
	return selected, nil
}

// selectInvigilatorsByID keeps the requested teachers in request order, which
// is the order halls receive them.
func selectInvigilatorsByID(staff []models.Invigilator, ids []string) ([]models.Invigilator, error) {
	if len(ids) == 0 {
		return staff, nil
	}
	byID := make(map[string]models.Invigilator, len(staff))
	for _, t := range staff {
		byID[t.ID] = t
	}
	selected := make([]models.Invigilator, 0, len(ids))
	for _, id := range ids {
		teacher, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teacher %s is not an active invigilator", id))
		}
		selected = append(selected, teacher)
	}
	return selected, nil
}

func (s *SeatingService) persist(ctx context.Context, cycle *models.ExamCycle, plans []*SeatingPlan) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, plan := range plans {
		if err = s.seats.ReplaceForSlot(ctx, tx, plan.Slot, plan.Assignments, plan.Invigilators); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to store seating for %s", plan.Slot.Key()))
		}
	}
	if cycle.Status != models.ExamCycleStatusCompleted {
		if err = s.cycles.UpdateStatus(ctx, tx, cycle.ID, models.ExamCycleStatusCompleted); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete exam cycle")
		}
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit seating")
	}
	return nil
}

// EnqueueCycle schedules AllocateCycle on the job queue.
func (s *SeatingService) EnqueueCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.SeatingJobResponse, error) {
	if s.dispatcher == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "seating queue not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seating payload")
	}
	cycle, err := s.loadCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = models.DefaultOccupancy(cycle.Category)
	}

	job := jobs.NewJob(JobTypeCycleSeating, SeatingJobPayload{CycleID: cycleID, Mode: mode, HallIDs: req.HallIDs, TeacherIDs: req.TeacherIDs})
	if err := s.dispatcher.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue seating job")
	}
	return &dto.SeatingJobResponse{JobID: job.ID, CycleID: cycleID, Mode: mode, Status: "QUEUED"}, nil
}

// Preview runs the allocator over caller supplied catalogs without persisting anything.
func (s *SeatingService) Preview(ctx context.Context, req dto.SeatingPreviewRequest) (*SeatingPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seating preview payload")
	}
	day, err := ParseExamDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	input := SeatingInput{
		Slot:     models.ExamSlot{Date: day, Session: req.Session},
		Roster:   req.Students,
		Halls:    req.Halls,
		Teachers: req.Teachers,
		Mode:     req.Mode,
	}
	if req.Seed != nil {
		return s.allocator.AllocateWith(input, rand.New(rand.NewSource(*req.Seed))), nil
	}
	return s.allocator.Allocate(input), nil
}

// GetSlotSeating returns the stored seating of one slot.
func (s *SeatingService) GetSlotSeating(ctx context.Context, query dto.SlotSeatingQuery) (*models.SlotSeating, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot query")
	}
	day, err := ParseExamDate(query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	seating, err := s.seats.ListBySlot(ctx, models.ExamSlot{Date: day, Session: query.Session})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating")
	}
	if len(seating.Assignments) == 0 && len(seating.Invigilators) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no seating stored for %s %s", FormatExamDate(day), query.Session))
	}
	return seating, nil
}

func (s *SeatingService) loadCycle(ctx context.Context, id string) (*models.ExamCycle, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle id is required")
	}
	cycle, err := s.cycles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam cycle")
	}
	return cycle, nil
}

// SubjectIDsByTrack splits a slot's subject IDs into regular and arrear sittings.
func SubjectIDsByTrack(exams []models.ScheduledExam) (regular, arrear []string) {
	for _, exam := range exams {
		if exam.Track == models.TrackArrear {
			arrear = append(arrear, exam.SubjectID)
			continue
		}
		regular = append(regular, exam.SubjectID)
	}
	return regular, arrear
}

// SummarizeSlot condenses one slot's seating plan.
func SummarizeSlot(group SlotExams, plan *SeatingPlan) dto.SlotSeatingSummary {
	pending := 0
	for _, inv := range plan.Invigilators {
		if inv.Pending {
			pending++
		}
	}
	return dto.SlotSeatingSummary{
		Date:                FormatExamDate(group.Slot.Date),
		Session:             group.Slot.Session,
		Subjects:            len(group.Exams),
		RosterSize:          plan.RosterSize,
		Seated:              len(plan.Assignments),
		Unseated:            plan.Unseated,
		HallsUsed:           len(plan.Halls),
		PendingInvigilators: pending,
	}
}

type cycleSeater interface {
	AllocateCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.CycleSeatingResult, error)
}

// SeatingWorker bridges queue jobs to SeatingService.
type SeatingWorker struct {
	seater cycleSeater
	logger *zap.Logger
}

// NewSeatingWorker constructs a worker.
func NewSeatingWorker(seater cycleSeater, logger *zap.Logger) *SeatingWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatingWorker{seater: seater, logger: logger}
}

// Handle processes a queue job. Validation and not-found failures are dropped
// since a retry cannot fix them.
func (w *SeatingWorker) Handle(ctx context.Context, job jobs.Job) error {
	var payload SeatingJobPayload
	switch p := job.Payload.(type) {
	case SeatingJobPayload:
		payload = p
	case *SeatingJobPayload:
		if p != nil {
			payload = *p
		}
	}
	if payload.CycleID == "" {
		w.logger.Error("seating job without cycle", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	result, err := w.seater.AllocateCycle(ctx, payload.CycleID, payload.request())
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status < 500 {
			w.logger.Warn("seating job rejected",
				zap.String("job_id", job.ID),
				zap.String("cycle_id", payload.CycleID),
				zap.String("code", appErr.Code),
				zap.Error(err),
			)
			return nil
		}
		return err
	}
	w.logger.Info("seating job finished",
		zap.String("job_id", job.ID),
		zap.String("cycle_id", payload.CycleID),
		zap.Int("slots", len(result.Slots)),
	)
	return nil
}
