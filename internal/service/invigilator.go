package service

import (
	"sort"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// PendingInvigilator marks a hall left without a teacher.
const PendingInvigilator = "To be assigned"

// AssignInvigilators pairs used halls, sorted by name, with teachers in roster
// order. Halls beyond the roster are pending; teachers beyond the halls are reserves.
func AssignInvigilators(slot models.ExamSlot, halls []models.Hall, teachers []string) ([]models.InvigilatorAssignment, []string) {
	sorted := make([]models.Hall, len(halls))
	copy(sorted, halls)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	assignments := make([]models.InvigilatorAssignment, 0, len(sorted))
	for i, hall := range sorted {
		assignment := models.InvigilatorAssignment{
			ExamDate: slot.Date,
			Session:  slot.Session,
			HallID:   hall.ID,
			HallName: hall.Name,
			Teacher:  PendingInvigilator,
			Pending:  true,
		}
		if i < len(teachers) {
			assignment.Teacher = teachers[i]
			assignment.Pending = false
		}
		assignments = append(assignments, assignment)
	}

	var reserves []string
	if len(teachers) > len(sorted) {
		reserves = append(reserves, teachers[len(sorted):]...)
	}
	return assignments, reserves
}
