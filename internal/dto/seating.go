package dto

import "github.com/noah-isme/exam-allocation-api/internal/models"

// AllocateCycleSeatingRequest seats every slot of a committed cycle. HallIDs
// restricts seating to those halls; TeacherIDs restricts invigilation to those
// teachers, assigned in the given order. Empty lists mean every active one.
type AllocateCycleSeatingRequest struct {
	Mode       models.OccupancyMode `json:"mode" validate:"omitempty,oneof=ONE_PER_BENCH TWO_PER_BENCH"`
	HallIDs    []string             `json:"hallIds" validate:"omitempty,unique,dive,required"`
	TeacherIDs []string             `json:"teacherIds" validate:"omitempty,unique,dive,required"`
}

// SeatingPreviewRequest runs the allocator over caller supplied catalogs.
type SeatingPreviewRequest struct {
	Date     string               `json:"date" validate:"required"`
	Session  models.ExamSession   `json:"session" validate:"required,oneof=FN AN SINGLE"`
	Mode     models.OccupancyMode `json:"mode" validate:"required,oneof=ONE_PER_BENCH TWO_PER_BENCH"`
	Students []models.ExamStudent `json:"students" validate:"required,min=1,dive"`
	Halls    []models.Hall        `json:"halls" validate:"required,min=1,dive"`
	Teachers []string             `json:"teachers"`
	Seed     *int64               `json:"seed"`
}

// SlotSeatingQuery identifies one exam slot.
type SlotSeatingQuery struct {
	Date    string             `form:"date" validate:"required"`
	Session models.ExamSession `form:"session" validate:"required,oneof=FN AN SINGLE"`
}

// SlotSeatingSummary reports the outcome of seating one slot.
type SlotSeatingSummary struct {
	Date                string             `json:"date"`
	Session             models.ExamSession `json:"session"`
	Subjects            int                `json:"subjects"`
	RosterSize          int                `json:"rosterSize"`
	Seated              int                `json:"seated"`
	Unseated            int                `json:"unseated"`
	HallsUsed           int                `json:"hallsUsed"`
	PendingInvigilators int                `json:"pendingInvigilators"`
}

// CycleSeatingResult is returned after every slot of a cycle has been seated.
type CycleSeatingResult struct {
	CycleID string                 `json:"cycleId"`
	Mode    models.OccupancyMode   `json:"mode"`
	Slots   []SlotSeatingSummary   `json:"slots"`
	Status  models.ExamCycleStatus `json:"status"`
}

// SeatingJobResponse acknowledges an asynchronous seating run.
type SeatingJobResponse struct {
	JobID   string               `json:"jobId"`
	CycleID string               `json:"cycleId"`
	Mode    models.OccupancyMode `json:"mode"`
	Status  string               `json:"status"`
}
