package dto

import (
	"time"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// GenerateExamScheduleRequest asks for a timetable proposal for one exam cycle.
type GenerateExamScheduleRequest struct {
	Name        string                  `json:"name" validate:"omitempty,max=120"`
	Category    models.ExamCategory     `json:"category" validate:"required,oneof=SEMESTER INTERNAL"`
	Year        int                     `json:"year" validate:"required,min=1,max=8"`
	Parity      models.SemesterParity   `json:"parity" validate:"required,oneof=ODD EVEN"`
	StartDate   string                  `json:"startDate" validate:"required"`
	EndDate     string                  `json:"endDate" validate:"required"`
	Holidays    []string                `json:"holidays" validate:"omitempty,dive,required"`
	Policy      models.SchedulingPolicy `json:"policy" validate:"omitempty,oneof=GAP_CONSTRAINED ROUND_ROBIN FIXED_SLOT"`
	WeekendMode string                  `json:"weekendMode" validate:"omitempty,oneof=SUNDAY SATURDAY_SUNDAY"`
}

// ExamScheduleStats summarises a proposal.
type ExamScheduleStats struct {
	Subjects     int            `json:"subjects"`
	Scheduled    int            `json:"scheduled"`
	Unscheduled  int            `json:"unscheduled"`
	Violations   int            `json:"violations"`
	Dates        int            `json:"dates"`
	ByDepartment map[string]int `json:"byDepartment"`
}

// ExamScheduleProposalResponse returns a generated or overridden proposal.
type ExamScheduleProposalResponse struct {
	ProposalID     string                     `json:"proposalId"`
	Category       models.ExamCategory        `json:"category"`
	Policy         models.SchedulingPolicy    `json:"policy"`
	SessionsPerDay int                        `json:"sessionsPerDay"`
	Dates          []string                   `json:"dates"`
	Exams          []models.ScheduledExam     `json:"exams"`
	Violations     []models.ScheduleViolation `json:"violations"`
	Unscheduled    []models.ExamSubject       `json:"unscheduled"`
	Stats          ExamScheduleStats          `json:"stats"`
	ExpiresAt      time.Time                  `json:"expiresAt"`
}

// ExamOverride moves one subject of a proposal to another slot.
type ExamOverride struct {
	SubjectID string              `json:"subjectId" validate:"required"`
	Track     models.SubjectTrack `json:"track" validate:"omitempty,oneof=REGULAR ARREAR"`
	Date      string              `json:"date" validate:"required"`
	Session   models.ExamSession  `json:"session" validate:"required,oneof=FN AN SINGLE"`
}

// OverrideExamScheduleRequest applies manual overrides before a proposal is saved.
type OverrideExamScheduleRequest struct {
	ProposalID string         `json:"proposalId" validate:"required"`
	Overrides  []ExamOverride `json:"overrides" validate:"required,min=1,dive"`
}

// SaveExamScheduleRequest commits a proposal as an exam cycle.
type SaveExamScheduleRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Name       string `json:"name" validate:"omitempty,max=120"`
}

// ExamCycleQuery filters cycle listings.
type ExamCycleQuery struct {
	Category models.ExamCategory    `form:"category" validate:"omitempty,oneof=SEMESTER INTERNAL"`
	Status   models.ExamCycleStatus `form:"status" validate:"omitempty,oneof=PENDING COMPLETED"`
	Year     int                    `form:"year" validate:"omitempty,min=1,max=8"`
}
