package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	"github.com/noah-isme/exam-allocation-api/internal/service"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
)

type seatingPlannerMock struct {
	async     bool
	mode      models.OccupancyMode
	request   dto.AllocateCycleSeatingRequest
	cycleID   string
	enqueued  bool
	preview   dto.SeatingPreviewRequest
	slotQuery dto.SlotSeatingQuery
	err       error
}

func (m *seatingPlannerMock) Async() bool { return m.async }

func (m *seatingPlannerMock) AllocateCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.CycleSeatingResult, error) {
	m.cycleID, m.mode, m.request = cycleID, req.Mode, req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CycleSeatingResult{CycleID: cycleID, Mode: models.OccupancyOnePerBench, Status: models.ExamCycleStatusCompleted}, nil
}

func (m *seatingPlannerMock) EnqueueCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.SeatingJobResponse, error) {
	m.cycleID, m.mode, m.request, m.enqueued = cycleID, req.Mode, req, true
	return &dto.SeatingJobResponse{JobID: "job-1", CycleID: cycleID, Status: "QUEUED"}, nil
}

func (m *seatingPlannerMock) Preview(ctx context.Context, req dto.SeatingPreviewRequest) (*service.SeatingPlan, error) {
	m.preview = req
	return &service.SeatingPlan{Mode: req.Mode, RosterSize: len(req.Students), Unseated: 1}, nil
}

func (m *seatingPlannerMock) GetSlotSeating(ctx context.Context, query dto.SlotSeatingQuery) (*models.SlotSeating, error) {
	m.slotQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return &models.SlotSeating{}, nil
}

func TestSeatingAllocateCycleWithoutBody(t *testing.T) {
	mockSvc := &seatingPlannerMock{}
	h := &SeatingHandler{service: mockSvc}

	w := performJSON(t, h.AllocateCycle, http.MethodPost, "/exam-cycles/cycle-1/seating", "", gin.Param{Key: "id", Value: "cycle-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cycle-1", mockSvc.cycleID)
	assert.Empty(t, mockSvc.mode)
	assert.False(t, mockSvc.enqueued)
}

func TestSeatingAllocateCycleModeOverride(t *testing.T) {
	mockSvc := &seatingPlannerMock{}
	h := &SeatingHandler{service: mockSvc}

	w := performJSON(t, h.AllocateCycle, http.MethodPost, "/exam-cycles/cycle-1/seating", `{"mode":"TWO_PER_BENCH"}`, gin.Param{Key: "id", Value: "cycle-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OccupancyTwoPerBench, mockSvc.mode)
}

func TestSeatingAllocateCyclePassesSelection(t *testing.T) {
	mockSvc := &seatingPlannerMock{}
	h := &SeatingHandler{service: mockSvc}

	w := performJSON(t, h.AllocateCycle, http.MethodPost, "/exam-cycles/cycle-1/seating",
		`{"hallIds":["h2","h1"],"teacherIds":["t3","t1"]}`, gin.Param{Key: "id", Value: "cycle-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"h2", "h1"}, mockSvc.request.HallIDs)
	assert.Equal(t, []string{"t3", "t1"}, mockSvc.request.TeacherIDs)
}

func TestSeatingAllocateCycleQueuesWhenAsync(t *testing.T) {
	mockSvc := &seatingPlannerMock{async: true}
	h := &SeatingHandler{service: mockSvc}

	w := performJSON(t, h.AllocateCycle, http.MethodPost, "/exam-cycles/cycle-1/seating", "", gin.Param{Key: "id", Value: "cycle-1"})

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, mockSvc.enqueued)
}

func TestSeatingAllocateCycleMissingCycle(t *testing.T) {
	h := &SeatingHandler{service: &seatingPlannerMock{err: appErrors.ErrNotFound}}
	w := performJSON(t, h.AllocateCycle, http.MethodPost, "/exam-cycles/nope/seating", "", gin.Param{Key: "id", Value: "nope"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeatingPreviewReportsUnseated(t *testing.T) {
	mockSvc := &seatingPlannerMock{}
	h := &SeatingHandler{service: mockSvc}

	w := performJSON(t, h.Preview, http.MethodPost, "/seating/preview",
		`{"date":"16.12.2025","session":"FN","mode":"ONE_PER_BENCH","students":[{"id":"1","register_number":"CSE001","name":"A","department":"CSE"}],"halls":[{"id":"h1","name":"H1","capacity":1}],"seed":7}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.preview.Seed)
	assert.EqualValues(t, 7, *mockSvc.preview.Seed)
	body := decodeEnvelope(t, w)
	assert.EqualValues(t, 1, body["meta"].(map[string]interface{})["unseated"])
}

func TestSeatingPreviewMalformed(t *testing.T) {
	h := &SeatingHandler{service: &seatingPlannerMock{}}
	w := performJSON(t, h.Preview, http.MethodPost, "/seating/preview", `[`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeatingSlotQuery(t *testing.T) {
	mockSvc := &seatingPlannerMock{}
	h := &SeatingHandler{service: mockSvc}

	w := performJSON(t, h.Slot, http.MethodGet, "/seating?date=16.12.2025&session=AN", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "16.12.2025", mockSvc.slotQuery.Date)
	assert.Equal(t, models.SessionAfternoon, mockSvc.slotQuery.Session)
}
