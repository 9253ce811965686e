package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/catalog"
	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	"github.com/noah-isme/exam-allocation-api/internal/service"
)

type planOptions struct {
	DataDir     string
	Category    models.ExamCategory
	Year        int
	Parity      models.SemesterParity
	StartDate   string
	EndDate     string
	Policy      models.SchedulingPolicy
	WeekendMode string
	Mode        models.OccupancyMode
	Seed        int64
}

// planReport is the JSON document printed by the planner.
type planReport struct {
	Category   models.ExamCategory      `json:"category"`
	Year       int                      `json:"year"`
	Parity     models.SemesterParity    `json:"parity"`
	Dates      []string                 `json:"dates"`
	Schedule   *service.ScheduleResult  `json:"schedule"`
	Mode       models.OccupancyMode     `json:"mode"`
	Slots      []dto.SlotSeatingSummary `json:"slots"`
	Seating    []*service.SeatingPlan   `json:"seating"`
	Violations int                      `json:"violations"`
	Unseated   int                      `json:"unseated"`
}

type planner struct {
	catalog   *catalog.Catalog
	pools     *service.SubjectPoolService
	scheduler *service.ExamScheduler
	logger    *zap.Logger
}

func newPlanner(cat *catalog.Catalog, logger *zap.Logger) *planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &planner{
		catalog:   cat,
		pools:     service.NewSubjectPoolService(cat, logger),
		scheduler: service.NewExamScheduler(logger),
		logger:    logger,
	}
}

// Run schedules the cycle, then seats every slot against the catalog halls.
func (p *planner) Run(ctx context.Context, opts planOptions) (*planReport, error) {
	start, err := service.ParseExamDate(opts.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := service.ParseExamDate(opts.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	holidays, err := p.holidays()
	if err != nil {
		return nil, err
	}
	weekend := opts.WeekendMode
	if weekend == "" {
		weekend = p.catalog.Calendar.WeekendMode
	}
	dates, err := service.GenerateAvailableDates(start, end, holidays, service.ParseWeekendMode(weekend))
	if err != nil {
		return nil, err
	}

	policy := opts.Policy
	if policy == "" {
		policy = models.DefaultPolicy(opts.Category)
	}
	pools, err := p.pools.ResolvePools(ctx, opts.Year, opts.Category, opts.Parity, policy)
	if err != nil {
		return nil, err
	}
	result, err := p.scheduler.Schedule(service.ScheduleInput{
		Policy:    policy,
		Dates:     dates,
		Subjects:  pools.Primary,
		Secondary: pools.Secondary,
	})
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = models.DefaultOccupancy(opts.Category)
	}
	report := &planReport{
		Category:   opts.Category,
		Year:       opts.Year,
		Parity:     opts.Parity,
		Schedule:   result,
		Mode:       mode,
		Violations: len(result.Violations),
	}
	for _, d := range dates {
		report.Dates = append(report.Dates, service.FormatExamDate(d))
	}

	allocator := service.NewSeatingAllocator(opts.Seed)
	halls := p.catalog.ActiveHalls()
	teachers := p.catalog.TeacherNames()
	for _, group := range service.GroupBySlot(result.Exams) {
		regular, arrear := service.SubjectIDsByTrack(group.Exams)
		roster, err := p.catalog.ListRoster(ctx, regular, arrear)
		if err != nil {
			return nil, err
		}
		plan := allocator.Allocate(service.SeatingInput{
			Slot:     group.Slot,
			Roster:   roster,
			Halls:    halls,
			Teachers: teachers,
			Mode:     mode,
		})
		report.Seating = append(report.Seating, plan)
		report.Slots = append(report.Slots, service.SummarizeSlot(group, plan))
		report.Unseated += plan.Unseated
		if plan.Unseated > 0 {
			p.logger.Warn("insufficient hall capacity",
				zap.String("slot", group.Slot.Key()),
				zap.Int("roster", plan.RosterSize),
				zap.Int("unseated", plan.Unseated),
			)
		}
	}

	p.logger.Info("plan complete",
		zap.String("policy", string(result.Policy)),
		zap.Int("exams", len(result.Exams)),
		zap.Int("violations", report.Violations),
		zap.Int("slots", len(report.Slots)),
	)
	return report, nil
}

func (p *planner) holidays() ([]time.Time, error) {
	raw := p.catalog.Calendar.Dates()
	out := make([]time.Time, 0, len(raw))
	for _, d := range raw {
		day, err := service.ParseExamDate(d)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", d, err)
		}
		out = append(out, day)
	}
	return out, nil
}
