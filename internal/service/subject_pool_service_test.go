package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-allocation-api/internal/models"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
)

type subjectListerStub struct {
	regular       map[models.SemesterParity][]models.ExamSubject
	arrears       map[models.SemesterParity][]models.ExamSubject
	err           error
	arrearParity  models.SemesterParity
	arrearQueried bool
}

func (s *subjectListerStub) ListRegular(ctx context.Context, year int, parity models.SemesterParity, category models.ExamCategory) ([]models.ExamSubject, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.regular[parity], nil
}

func (s *subjectListerStub) ListArrears(ctx context.Context, year int, parity models.SemesterParity) ([]models.ExamSubject, error) {
	s.arrearQueried = true
	s.arrearParity = parity
	return s.arrears[parity], nil
}

func poolStub() *subjectListerStub {
	return &subjectListerStub{
		regular: map[models.SemesterParity][]models.ExamSubject{
			models.ParityOdd: {
				{ID: "1", Code: "MA301", Department: "ECE", Weight: models.WeightNonMajor},
				{ID: "2", Code: "CS301", Department: "CSE", Weight: models.WeightHeavy},
				{ID: "3", Code: "EC301", Department: "ECE", Weight: models.WeightHeavy},
			},
			models.ParityEven: {
				{ID: "4", Code: "CS402", Department: "CSE", Weight: models.WeightHeavy},
			},
		},
		arrears: map[models.SemesterParity][]models.ExamSubject{
			models.ParityEven: {
				{ID: "5", Code: "CS202", Department: "CSE", Weight: models.WeightHeavy, StudentCount: 3},
			},
		},
	}
}

func TestSubjectPoolSemesterIncludesOppositeParityArrears(t *testing.T) {
	stub := poolStub()
	svc := NewSubjectPoolService(stub, nil)

	pool, err := svc.Resolve(context.Background(), 3, models.CategorySemester, models.ParityOdd)
	require.NoError(t, err)

	assert.True(t, stub.arrearQueried)
	assert.Equal(t, models.ParityEven, stub.arrearParity)
	codes := make([]string, len(pool))
	for i, s := range pool {
		codes[i] = s.Code
	}
	assert.Equal(t, []string{"CS301", "EC301", "MA301", "CS202"}, codes)
	assert.Equal(t, models.TrackArrear, pool[3].Track)
	assert.Equal(t, models.TrackRegular, pool[0].Track)
}

func TestSubjectPoolInternalSkipsArrears(t *testing.T) {
	stub := poolStub()
	svc := NewSubjectPoolService(stub, nil)

	pool, err := svc.Resolve(context.Background(), 3, models.CategoryInternal, models.ParityOdd)
	require.NoError(t, err)
	assert.False(t, stub.arrearQueried)
	assert.Len(t, pool, 3)
}

func TestSubjectPoolEmptyIsFatal(t *testing.T) {
	svc := NewSubjectPoolService(&subjectListerStub{}, nil)
	_, err := svc.Resolve(context.Background(), 1, models.CategoryInternal, models.ParityEven)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoSubjects))
}

func TestSubjectPoolRepositoryError(t *testing.T) {
	svc := NewSubjectPoolService(&subjectListerStub{err: errors.New("db down")}, nil)
	_, err := svc.Resolve(context.Background(), 1, models.CategorySemester, models.ParityOdd)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestSubjectPoolsRoundRobinLoadsSecondary(t *testing.T) {
	svc := NewSubjectPoolService(poolStub(), nil)

	pools, err := svc.ResolvePools(context.Background(), 3, models.CategoryInternal, models.ParityOdd, models.PolicyRoundRobin)
	require.NoError(t, err)
	require.Len(t, pools.Secondary, 1)
	assert.Equal(t, "CS402", pools.Secondary[0].Code)

	pools, err = svc.ResolvePools(context.Background(), 3, models.CategoryInternal, models.ParityOdd, models.PolicyFixedSlot)
	require.NoError(t, err)
	assert.Empty(t, pools.Secondary)
}

func TestSubjectPoolsRoundRobinSemesterKeepsArrearsOfBothParities(t *testing.T) {
	stub := poolStub()
	stub.arrears[models.ParityOdd] = []models.ExamSubject{
		{ID: "2", Code: "CS301", Department: "CSE", Weight: models.WeightHeavy, StudentCount: 2},
	}
	svc := NewSubjectPoolService(stub, nil)

	pools, err := svc.ResolvePools(context.Background(), 3, models.CategorySemester, models.ParityOdd, models.PolicyRoundRobin)
	require.NoError(t, err)

	assert.Equal(t, models.TrackArrear, pools.Primary[len(pools.Primary)-1].Track)
	assert.Equal(t, "CS202", pools.Primary[len(pools.Primary)-1].Code)

	require.Len(t, pools.Secondary, 2)
	assert.Equal(t, "CS402", pools.Secondary[0].Code)
	assert.Equal(t, models.TrackRegular, pools.Secondary[0].Track)
	assert.Equal(t, "CS301", pools.Secondary[1].Code)
	assert.Equal(t, models.TrackArrear, pools.Secondary[1].Track)
}

func TestSubjectPoolsRoundRobinEmptyOppositeParity(t *testing.T) {
	stub := poolStub()
	delete(stub.regular, models.ParityEven)
	svc := NewSubjectPoolService(stub, nil)

	pools, err := svc.ResolvePools(context.Background(), 3, models.CategoryInternal, models.ParityOdd, models.PolicyRoundRobin)
	require.NoError(t, err)
	assert.Len(t, pools.Primary, 3)
	assert.Empty(t, pools.Secondary)
}
