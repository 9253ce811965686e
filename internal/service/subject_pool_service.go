package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/models"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
)

type examSubjectLister interface {
	ListRegular(ctx context.Context, year int, parity models.SemesterParity, category models.ExamCategory) ([]models.ExamSubject, error)
	ListArrears(ctx context.Context, year int, parity models.SemesterParity) ([]models.ExamSubject, error)
}

// SubjectPoolService decides which subjects are examined in a cycle.
type SubjectPoolService struct {
	subjects examSubjectLister
	logger   *zap.Logger
}

// NewSubjectPoolService constructs the resolver.
func NewSubjectPoolService(subjects examSubjectLister, logger *zap.Logger) *SubjectPoolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectPoolService{subjects: subjects, logger: logger}
}

// SubjectPools is the primary pool plus, for round-robin, the opposite parity pool.
type SubjectPools struct {
	Primary   []models.ExamSubject
	Secondary []models.ExamSubject
}

// Resolve returns the prioritised pool for a (year, category, parity) cycle.
// Semester cycles add arrear sittings of opposite parity subjects.
func (s *SubjectPoolService) Resolve(ctx context.Context, year int, category models.ExamCategory, parity models.SemesterParity) ([]models.ExamSubject, error) {
	regular, err := s.subjects.ListRegular(ctx, year, parity, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load regular subjects")
	}
	pool := markTrack(regular, models.TrackRegular)

	if category == models.CategorySemester {
		arrears, err := s.subjects.ListArrears(ctx, year, parity.Opposite())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load arrear subjects")
		}
		pool = append(pool, markTrack(arrears, models.TrackArrear)...)
	}

	if len(pool) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoSubjects, fmt.Sprintf("no %s subjects found for year %d (%s semester)", category, year, parity))
	}
	SortByPriority(pool)

	s.logger.Debug("subject pool resolved",
		zap.Int("year", year),
		zap.String("category", string(category)),
		zap.String("parity", string(parity)),
		zap.Int("subjects", len(pool)),
	)
	return pool, nil
}

// ResolvePools resolves the primary pool and, for round-robin, the full pool
// of the opposite parity. Under SEMESTER that second pool carries the arrear
// sittings of primary parity subjects. An empty opposite pool is not an error.
func (s *SubjectPoolService) ResolvePools(ctx context.Context, year int, category models.ExamCategory, parity models.SemesterParity, policy models.SchedulingPolicy) (*SubjectPools, error) {
	primary, err := s.Resolve(ctx, year, category, parity)
	if err != nil {
		return nil, err
	}
	pools := &SubjectPools{Primary: primary}
	if policy != models.PolicyRoundRobin {
		return pools, nil
	}

	secondary, err := s.Resolve(ctx, year, category, parity.Opposite())
	switch {
	case appErrors.Is(err, appErrors.ErrNoSubjects):
		return pools, nil
	case err != nil:
		return nil, err
	}
	pools.Secondary = secondary
	return pools, nil
}

func markTrack(subjects []models.ExamSubject, track models.SubjectTrack) []models.ExamSubject {
	out := make([]models.ExamSubject, len(subjects))
	for i, subject := range subjects {
		subject.Track = track
		out[i] = subject
	}
	return out
}

// SortByPriority orders regular before arrear, heavy before non-major, then
// by department and code.
func SortByPriority(subjects []models.ExamSubject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		a, b := subjects[i], subjects[j]
		if a.Track != b.Track {
			return a.Track == models.TrackRegular
		}
		if a.IsHeavy() != b.IsHeavy() {
			return a.IsHeavy()
		}
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		return a.Code < b.Code
	})
}
