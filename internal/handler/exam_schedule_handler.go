package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-allocation-api/internal/dto"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	"github.com/noah-isme/exam-allocation-api/internal/service"
	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
	"github.com/noah-isme/exam-allocation-api/pkg/response"
)

type examScheduler interface {
	Generate(ctx context.Context, req dto.GenerateExamScheduleRequest) (*dto.ExamScheduleProposalResponse, error)
	Override(ctx context.Context, req dto.OverrideExamScheduleRequest) (*dto.ExamScheduleProposalResponse, error)
	Save(ctx context.Context, req dto.SaveExamScheduleRequest) (*models.ExamCycle, error)
	ListCycles(ctx context.Context, query dto.ExamCycleQuery) ([]models.ExamCycle, error)
	GetCycleExams(ctx context.Context, id string) ([]models.ScheduledExam, error)
	GetCycleViolations(ctx context.Context, id string) ([]models.ScheduleViolation, error)
	Finalize(ctx context.Context, id string) (*models.ExamCycle, error)
	DeleteCycle(ctx context.Context, id string) error
}

// ExamScheduleHandler exposes exam timetable endpoints.
type ExamScheduleHandler struct {
	service examScheduler
}

// NewExamScheduleHandler constructs the handler.
func NewExamScheduleHandler(svc *service.ExamScheduleService) *ExamScheduleHandler {
	return &ExamScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate an exam timetable proposal
// @Description Resolves exam dates and the subject pool, then places subjects with the requested policy. Soft failures are returned as violations.
// @Tags Exam Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateExamScheduleRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /exam-schedules/generate [post]
func (h *ExamScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateExamScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	proposal, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, map[string]interface{}{"mode": "preview"})
}

// Override godoc
// @Summary Move exams of a proposal to other slots
// @Tags Exam Schedules
// @Accept json
// @Produce json
// @Param payload body dto.OverrideExamScheduleRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exam-schedules/override [post]
func (h *ExamScheduleHandler) Override(c *gin.Context) {
	var req dto.OverrideExamScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}
	proposal, err := h.service.Override(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, map[string]interface{}{"mode": "preview"})
}

// Save godoc
// @Summary Commit a proposal as an exam cycle
// @Tags Exam Schedules
// @Accept json
// @Produce json
// @Param payload body dto.SaveExamScheduleRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Router /exam-schedules/save [post]
func (h *ExamScheduleHandler) Save(c *gin.Context) {
	var req dto.SaveExamScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	cycle, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cycle)
}

// ListCycles godoc
// @Summary List exam cycles
// @Tags Exam Cycles
// @Produce json
// @Param category query string false "SEMESTER or INTERNAL"
// @Param status query string false "PENDING or COMPLETED"
// @Param year query int false "Year of study"
// @Success 200 {object} response.Envelope
// @Router /exam-cycles [get]
func (h *ExamScheduleHandler) ListCycles(c *gin.Context) {
	var query dto.ExamCycleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cycle filter"))
		return
	}
	cycles, err := h.service.ListCycles(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycles, map[string]interface{}{"total": len(cycles)})
}

// Exams godoc
// @Summary List the exams of a cycle
// @Tags Exam Cycles
// @Produce json
// @Param id path string true "Exam cycle ID"
// @Success 200 {object} response.Envelope
// @Router /exam-cycles/{id}/exams [get]
func (h *ExamScheduleHandler) Exams(c *gin.Context) {
	exams, err := h.service.GetCycleExams(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams)
}

// Violations godoc
// @Summary List the violations recorded for a cycle
// @Tags Exam Cycles
// @Produce json
// @Param id path string true "Exam cycle ID"
// @Success 200 {object} response.Envelope
// @Router /exam-cycles/{id}/violations [get]
func (h *ExamScheduleHandler) Violations(c *gin.Context) {
	violations, err := h.service.GetCycleViolations(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, violations)
}

// Finalize godoc
// @Summary Mark a cycle completed
// @Tags Exam Cycles
// @Produce json
// @Param id path string true "Exam cycle ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exam-cycles/{id}/finalize [post]
func (h *ExamScheduleHandler) Finalize(c *gin.Context) {
	cycle, err := h.service.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle)
}

// Delete godoc
// @Summary Delete a pending cycle
// @Tags Exam Cycles
// @Param id path string true "Exam cycle ID"
// @Success 204
// @Router /exam-cycles/{id} [delete]
func (h *ExamScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteCycle(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
