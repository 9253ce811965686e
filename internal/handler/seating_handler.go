package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	"github.com/noah-isme/exam-allocation-api/internal/service"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
	"github.com/noah-isme/exam-allocation-api/pkg/response"
)

type seatingPlanner interface {
	Async() bool
	AllocateCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.CycleSeatingResult, error)
	EnqueueCycle(ctx context.Context, cycleID string, req dto.AllocateCycleSeatingRequest) (*dto.SeatingJobResponse, error)
	Preview(ctx context.Context, req dto.SeatingPreviewRequest) (*service.SeatingPlan, error)
	GetSlotSeating(ctx context.Context, query dto.SlotSeatingQuery) (*models.SlotSeating, error)
}

// SeatingHandler exposes hall seating endpoints.
type SeatingHandler struct {
	service seatingPlanner
}

// NewSeatingHandler constructs the handler.
func NewSeatingHandler(svc *service.SeatingService) *SeatingHandler {
	return &SeatingHandler{service: svc}
}

// AllocateCycle godoc
// @Summary Seat every slot of an exam cycle
// @Description Runs synchronously unless asynchronous seating is enabled, in which case a job is queued and 202 is returned.
// @Tags Seating
// @Accept json
// @Produce json
// @Param id path string true "Exam cycle ID"
// @Param payload body dto.AllocateCycleSeatingRequest false "Occupancy override and hall/teacher selection"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /exam-cycles/{id}/seating [post]
func (h *SeatingHandler) AllocateCycle(c *gin.Context) {
	var req dto.AllocateCycleSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid seating payload"))
		return
	}

	if h.service.Async() {
		job, err := h.service.EnqueueCycle(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, job)
		return
	}

	result, err := h.service.AllocateCycle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Preview godoc
// @Summary Preview a seating plan for supplied students and halls
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body dto.SeatingPreviewRequest true "Preview payload"
// @Success 200 {object} response.Envelope
// @Router /seating/preview [post]
func (h *SeatingHandler) Preview(c *gin.Context) {
	var req dto.SeatingPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}
	plan, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, map[string]interface{}{"unseated": plan.Unseated})
}

// Slot godoc
// @Summary Get stored seating for one exam slot
// @Tags Seating
// @Produce json
// @Param date query string true "Exam date (DD.MM.YYYY)"
// @Param session query string true "FN, AN or SINGLE"
// @Success 200 {object} response.Envelope
// @Router /seating [get]
func (h *SeatingHandler) Slot(c *gin.Context) {
	var query dto.SlotSeatingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot query"))
		return
	}
	seating, err := h.service.GetSlotSeating(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seating)
}
