package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
)

type examCycleStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, cycle *models.ExamCycle) error
	List(ctx context.Context, filter models.ExamCycleFilter) ([]models.ExamCycle, error)
	FindByID(ctx context.Context, id string) (*models.ExamCycle, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.ExamCycleStatus) error
	Delete(ctx context.Context, id string) error
}

type scheduledExamStore interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, cycleID string, exams []models.ScheduledExam) error
	ListByCycle(ctx context.Context, cycleID string) ([]models.ScheduledExam, error)
	InsertViolations(ctx context.Context, exec sqlx.ExtContext, cycleID string, violations []models.ScheduleViolation) error
	ListViolations(ctx context.Context, cycleID string) ([]models.ScheduleViolation, error)
}

type subjectPoolResolver interface {
	ResolvePools(ctx context.Context, year int, category models.ExamCategory, parity models.SemesterParity, policy models.SchedulingPolicy) (*SubjectPools, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type proposalCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ExamScheduleConfig governs proposal handling.
type ExamScheduleConfig struct {
	ProposalTTL time.Duration
	WeekendMode WeekendMode
}

// ExamScheduleService generates timetable proposals and commits them as exam cycles.
type ExamScheduleService struct {
	pools     subjectPoolResolver
	scheduler *ExamScheduler
	cycles    examCycleStore
	exams     scheduledExamStore
	tx        txProvider
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	store     *proposalStore
	weekend   WeekendMode
}

// NewExamScheduleService wires scheduling dependencies. cache may be nil, in
// which case proposals live in memory only.
func NewExamScheduleService(
	pools subjectPoolResolver,
	scheduler *ExamScheduler,
	cycles examCycleStore,
	exams scheduledExamStore,
	tx txProvider,
	cache proposalCache,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ExamScheduleConfig,
) *ExamScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if scheduler == nil {
		scheduler = NewExamScheduler(logger)
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.WeekendMode == "" {
		cfg.WeekendMode = WeekendSunday
	}
	return &ExamScheduleService{
		pools:     pools,
		scheduler: scheduler,
		cycles:    cycles,
		exams:     exams,
		tx:        tx,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL, cache, metrics, logger),
		weekend:   cfg.WeekendMode,
	}
}

// Generate resolves the calendar and subject pool, runs the placement policy
// and stores the outcome as a proposal.
func (s *ExamScheduleService) Generate(ctx context.Context, req dto.GenerateExamScheduleRequest) (*dto.ExamScheduleProposalResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam schedule payload")
	}

	start, err := ParseExamDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid startDate")
	}
	end, err := ParseExamDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid endDate")
	}
	holidays := make([]time.Time, 0, len(req.Holidays))
	for _, raw := range req.Holidays {
		day, err := ParseExamDate(raw)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid holiday %q", raw))
		}
		holidays = append(holidays, day)
	}

	mode := s.weekend
	if req.WeekendMode != "" {
		mode = ParseWeekendMode(req.WeekendMode)
	}
	dates, err := GenerateAvailableDates(start, end, holidays, mode)
	if err != nil {
		return nil, err
	}

	policy := req.Policy
	if policy == "" {
		policy = models.DefaultPolicy(req.Category)
	}
	pools, err := s.pools.ResolvePools(ctx, req.Year, req.Category, req.Parity, policy)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	result, err := s.scheduler.Schedule(ScheduleInput{
		Policy:    policy,
		Dates:     dates,
		Subjects:  pools.Primary,
		Secondary: pools.Secondary,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveSchedule(result, time.Since(began))

	proposal := examProposal{
		ProposalID:     uuid.NewString(),
		Name:           req.Name,
		Category:       req.Category,
		Year:           req.Year,
		Parity:         req.Parity,
		Policy:         policy,
		StartDate:      start,
		EndDate:        end,
		Dates:          dates,
		SessionsPerDay: result.SessionsPerDay,
		Subjects:       len(pools.Primary) + len(pools.Secondary),
		Exams:          result.Exams,
		Violations:     result.Violations,
		Unscheduled:    result.Unscheduled,
		RequestedAt:    time.Now().UTC(),
	}
	s.store.Save(ctx, proposal)

	s.logger.Info("exam schedule proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("policy", string(policy)),
		zap.Int("exams", len(proposal.Exams)),
		zap.Int("violations", len(proposal.Violations)),
		zap.Int("unscheduled", len(proposal.Unscheduled)),
	)
	return s.store.response(proposal), nil
}

// Override moves subjects of a stored proposal to operator chosen slots.
// Subjects left unscheduled may be placed this way too.
func (s *ExamScheduleService) Override(ctx context.Context, req dto.OverrideExamScheduleRequest) (*dto.ExamScheduleProposalResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	proposal, ok := s.store.Get(ctx, req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}

	available := make(map[string]struct{}, len(proposal.Dates))
	for _, d := range proposal.Dates {
		available[FormatExamDate(d)] = struct{}{}
	}

	for _, override := range req.Overrides {
		day, err := ParseExamDate(override.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid date for subject %s", override.SubjectID))
		}
		if _, ok := available[FormatExamDate(day)]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not an available exam date", FormatExamDate(day)))
		}
		if !proposal.allowsSession(override.Session) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %s is not used by this schedule", override.Session))
		}
		if err := proposal.move(override.SubjectID, override.Track, models.ExamSlot{Date: day, Session: override.Session}); err != nil {
			return nil, err
		}
	}
	sortExams(proposal.Exams)
	proposal.RequestedAt = time.Now().UTC()
	s.store.Save(ctx, proposal)

	s.logger.Info("exam schedule proposal overridden",
		zap.String("proposal_id", proposal.ProposalID),
		zap.Int("overrides", len(req.Overrides)),
	)
	return s.store.response(proposal), nil
}

// Save persists a proposal as a PENDING exam cycle. Recorded violations are
// stored with the cycle and never block the commit.
func (s *ExamScheduleService) Save(ctx context.Context, req dto.SaveExamScheduleRequest) (*models.ExamCycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save schedule payload")
	}
	proposal, ok := s.store.Get(ctx, req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if len(proposal.Exams) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal has no scheduled exams")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaBytes, marshalErr := json.Marshal(map[string]any{
		"proposalId":     proposal.ProposalID,
		"sessionsPerDay": proposal.SessionsPerDay,
		"dates":          formatDates(proposal.Dates),
		"unscheduled":    subjectCodes(proposal.Unscheduled),
		"violations":     len(proposal.Violations),
		"generatedAt":    proposal.RequestedAt,
	})
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode cycle metadata")
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = proposal.Name
	}
	if name == "" {
		name = fmt.Sprintf("%s Y%d %s %s", proposal.Category, proposal.Year, proposal.Parity, FormatExamDate(proposal.StartDate))
	}

	cycle := &models.ExamCycle{
		Name:      name,
		Category:  proposal.Category,
		Year:      proposal.Year,
		Parity:    proposal.Parity,
		Policy:    proposal.Policy,
		StartDate: proposal.StartDate,
		EndDate:   proposal.EndDate,
		Status:    models.ExamCycleStatusPending,
		Meta:      types.JSONText(metaBytes),
	}
	if err = s.cycles.Create(ctx, tx, cycle); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam cycle")
		return nil, err
	}
	if err = s.exams.InsertBatch(ctx, tx, cycle.ID, proposal.Exams); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist scheduled exams")
		return nil, err
	}
	if err = s.exams.InsertViolations(ctx, tx, cycle.ID, proposal.Violations); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule violations")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit exam cycle")
		return nil, err
	}

	s.store.Delete(ctx, proposal.ProposalID)
	s.logger.Info("exam cycle saved",
		zap.String("cycle_id", cycle.ID),
		zap.Int("exams", len(proposal.Exams)),
		zap.Int("violations", len(proposal.Violations)),
	)
	return cycle, nil
}

// ListCycles returns committed cycles.
func (s *ExamScheduleService) ListCycles(ctx context.Context, query dto.ExamCycleQuery) ([]models.ExamCycle, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cycle filter")
	}
	cycles, err := s.cycles.List(ctx, models.ExamCycleFilter{Category: query.Category, Status: query.Status, Year: query.Year})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam cycles")
	}
	return cycles, nil
}

// GetCycle loads one cycle.
func (s *ExamScheduleService) GetCycle(ctx context.Context, id string) (*models.ExamCycle, error) {
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

// GetCycleExams returns the exams of a cycle in slot order.
func (s *ExamScheduleService) GetCycleExams(ctx context.Context, id string) ([]models.ScheduledExam, error) {
	if _, err := s.GetCycle(ctx, id); err != nil {
		return nil, err
	}
	exams, err := s.exams.ListByCycle(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduled exams")
	}
	return exams, nil
}

// GetCycleViolations returns the violations recorded for a cycle.
func (s *ExamScheduleService) GetCycleViolations(ctx context.Context, id string) ([]models.ScheduleViolation, error) {
	if _, err := s.GetCycle(ctx, id); err != nil {
		return nil, err
	}
	violations, err := s.exams.ListViolations(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule violations")
	}
	return violations, nil
}

// Finalize marks a pending cycle as completed.
func (s *ExamScheduleService) Finalize(ctx context.Context, id string) (*models.ExamCycle, error) {
	cycle, err := s.GetCycle(ctx, id)
	if err != nil {
		return nil, err
	}
	if cycle.Status == models.ExamCycleStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "exam cycle already completed")
	}
	if err := s.cycles.UpdateStatus(ctx, nil, id, models.ExamCycleStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam cycle")
	}
	cycle.Status = models.ExamCycleStatusCompleted
	return cycle, nil
}

// DeleteCycle removes a cycle that has not been completed.
func (s *ExamScheduleService) DeleteCycle(ctx context.Context, id string) error {
	cycle, err := s.GetCycle(ctx, id)
	if err != nil {
		return err
	}
	if cycle.Status != models.ExamCycleStatusPending {
		return appErrors.Clone(appErrors.ErrFinalized, "only pending exam cycles can be deleted")
	}
	if err := s.cycles.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam cycle not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam cycle")
	}
	return nil
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = FormatExamDate(d)
	}
	return out
}

func subjectCodes(subjects []models.ExamSubject) []string {
	out := make([]string, len(subjects))
	for i, s := range subjects {
		out[i] = s.Code
	}
	return out
}

// --- Proposals ---

type examProposal struct {
	ProposalID     string                     `json:"proposalId"`
	Name           string                     `json:"name"`
	Category       models.ExamCategory        `json:"category"`
	Year           int                        `json:"year"`
	Parity         models.SemesterParity      `json:"parity"`
	Policy         models.SchedulingPolicy    `json:"policy"`
	StartDate      time.Time                  `json:"startDate"`
	EndDate        time.Time                  `json:"endDate"`
	Dates          []time.Time                `json:"dates"`
	SessionsPerDay int                        `json:"sessionsPerDay"`
	Subjects       int                        `json:"subjects"`
	Exams          []models.ScheduledExam     `json:"exams"`
	Violations     []models.ScheduleViolation `json:"violations"`
	Unscheduled    []models.ExamSubject       `json:"unscheduled"`
	RequestedAt    time.Time                  `json:"requestedAt"`
}

// clone copies the slices so that edits never leak into the stored proposal.
func (p examProposal) clone() examProposal {
	p.Dates = append([]time.Time(nil), p.Dates...)
	p.Exams = append([]models.ScheduledExam(nil), p.Exams...)
	p.Violations = append([]models.ScheduleViolation(nil), p.Violations...)
	p.Unscheduled = append([]models.ExamSubject(nil), p.Unscheduled...)
	return p
}

func (p *examProposal) allowsSession(session models.ExamSession) bool {
	if p.SessionsPerDay >= 2 {
		return session == models.SessionForenoon || session == models.SessionAfternoon
	}
	return session == models.SessionForenoon
}

// clashes reports whether dept already sits an exam that collides with slot.
// Fixed-slot schedules may run two sessions a day, so only the slot itself
// collides there; the other policies allow one exam per department per date.
// The exam at index skip is the one being moved and never clashes.
func (p *examProposal) clashes(skip int, dept string, slot models.ExamSlot) *models.ScheduledExam {
	for i := range p.Exams {
		exam := &p.Exams[i]
		if i == skip || exam.Department != dept || !exam.ExamDate.Equal(slot.Date) {
			continue
		}
		if p.Policy == models.PolicyFixedSlot && exam.Session != slot.Session {
			continue
		}
		return exam
	}
	return nil
}

func matchesSitting(id string, track models.SubjectTrack, wantID string, wantTrack models.SubjectTrack) bool {
	return id == wantID && (wantTrack == "" || track == wantTrack)
}

// move relocates the sitting of subjectID. Semester proposals can carry a
// regular and an arrear sitting of one subject; track picks between them and
// is required when both are present.
func (p *examProposal) move(subjectID string, track models.SubjectTrack, slot models.ExamSlot) error {
	examAt, pendingAt, matches := -1, -1, 0
	for i, exam := range p.Exams {
		if matchesSitting(exam.SubjectID, exam.Track, subjectID, track) {
			if examAt < 0 {
				examAt = i
			}
			matches++
		}
	}
	for i, subject := range p.Unscheduled {
		if matchesSitting(subject.ID, subject.Track, subjectID, track) {
			if examAt < 0 && pendingAt < 0 {
				pendingAt = i
			}
			matches++
		}
	}
	if matches > 1 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s has both a regular and an arrear sitting; set track", subjectID))
	}

	if examAt >= 0 {
		exam := &p.Exams[examAt]
		if other := p.clashes(examAt, exam.Department, slot); other != nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s clashes with %s of %s on %s", exam.SubjectCode, other.SubjectCode, exam.Department, FormatExamDate(slot.Date)))
		}
		exam.ExamDate = slot.Date
		exam.Session = slot.Session
		return nil
	}

	if pendingAt >= 0 {
		subject := p.Unscheduled[pendingAt]
		if other := p.clashes(-1, subject.Department, slot); other != nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s clashes with %s of %s on %s", subject.Code, other.SubjectCode, subject.Department, FormatExamDate(slot.Date)))
		}
		p.Exams = append(p.Exams, newScheduledExam(subject, slot))
		p.Unscheduled = append(p.Unscheduled[:pendingAt:pendingAt], p.Unscheduled[pendingAt+1:]...)
		p.dropViolations(subjectID, models.ViolationNoSlotAvailable)
		return nil
	}
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s is not part of the proposal", subjectID))
}

func (p *examProposal) dropViolations(subjectID string, kind models.ViolationKind) {
	kept := p.Violations[:0:0]
	for _, v := range p.Violations {
		if v.SubjectID == subjectID && v.Kind == kind {
			continue
		}
		kept = append(kept, v)
	}
	p.Violations = kept
}

type proposalStore struct {
	ttl     time.Duration
	mu      sync.RWMutex
	items   map[string]examProposal
	cache   proposalCache
	metrics *MetricsService
	logger  *zap.Logger
}

func newProposalStore(ttl time.Duration, cache proposalCache, metrics *MetricsService, logger *zap.Logger) *proposalStore {
	return &proposalStore{
		ttl:     ttl,
		items:   make(map[string]examProposal),
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

func proposalKey(id string) string {
	return "proposal:" + id
}

func (s *proposalStore) Save(ctx context.Context, proposal examProposal) {
	s.mu.Lock()
	s.items[proposal.ProposalID] = proposal
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, proposalKey(proposal.ProposalID), proposal, s.ttl); err != nil {
		s.logger.Warn("failed to cache proposal", zap.String("proposal_id", proposal.ProposalID), zap.Error(err))
	}
}

// Get returns a live proposal from memory, falling back to the shared cache so
// that another replica's proposals can be saved here.
func (s *proposalStore) Get(ctx context.Context, id string) (examProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()

	if !ok && s.cache != nil {
		began := time.Now()
		err := s.cache.Get(ctx, proposalKey(id), &proposal)
		s.metrics.RecordCacheOperation(err == nil, time.Since(began))
		if err != nil {
			if !appErrors.Is(err, appErrors.ErrCacheMiss) {
				s.logger.Warn("failed to read cached proposal", zap.String("proposal_id", id), zap.Error(err))
			}
			return examProposal{}, false
		}
		ok = true
	}
	if !ok {
		return examProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(ctx, id)
		return examProposal{}, false
	}
	return proposal.clone(), true
}

func (s *proposalStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, proposalKey(id)); err != nil {
		s.logger.Warn("failed to evict cached proposal", zap.String("proposal_id", id), zap.Error(err))
	}
}

func (s *proposalStore) response(p examProposal) *dto.ExamScheduleProposalResponse {
	byDept := make(map[string]int)
	for _, exam := range p.Exams {
		byDept[exam.Department]++
	}
	exams := p.Exams
	if exams == nil {
		exams = []models.ScheduledExam{}
	}
	violations := append([]models.ScheduleViolation{}, p.Violations...)
	unscheduled := p.Unscheduled
	if unscheduled == nil {
		unscheduled = []models.ExamSubject{}
	}
	sort.SliceStable(violations, func(i, j int) bool { return violations[i].SubjectCode < violations[j].SubjectCode })

	return &dto.ExamScheduleProposalResponse{
		ProposalID:     p.ProposalID,
		Category:       p.Category,
		Policy:         p.Policy,
		SessionsPerDay: p.SessionsPerDay,
		Dates:          formatDates(p.Dates),
		Exams:          exams,
		Violations:     violations,
		Unscheduled:    unscheduled,
		Stats: dto.ExamScheduleStats{
			Subjects:     p.Subjects,
			Scheduled:    len(p.Exams),
			Unscheduled:  len(p.Unscheduled),
			Violations:   len(p.Violations),
			Dates:        len(p.Dates),
			ByDepartment: byDept,
		},
		ExpiresAt: p.RequestedAt.Add(s.ttl),
	}
}
