package main

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/catalog"
	"github.com/noah-isme/exam-allocation-api/internal/models"
)

func plannerCatalog() *catalog.Catalog {
	student := func(reg, dept string, subjects ...string) catalog.StudentRecord {
		return catalog.StudentRecord{
			ExamStudent: models.ExamStudent{ID: reg, RegisterNumber: reg, Name: reg, Department: dept},
			Regular:     subjects,
			Active:      true,
		}
	}
	return &catalog.Catalog{
		Subjects: []models.ExamSubject{
			{ID: "CS301", Code: "CS301", Department: "CSE", Year: 3, Parity: models.ParityOdd, Weight: models.WeightHeavy, Category: models.CategorySemester},
			{ID: "EC301", Code: "EC301", Department: "ECE", Year: 3, Parity: models.ParityOdd, Weight: models.WeightHeavy, Category: models.CategorySemester},
		},
		Students: []catalog.StudentRecord{
			student("CSE001", "CSE", "CS301"),
			student("CSE002", "CSE", "CS301"),
			student("ECE001", "ECE", "EC301"),
		},
		Halls:    []models.Hall{{ID: "H1", Name: "H1", Capacity: 10, Active: true}},
		Teachers: []models.Invigilator{{Name: "Anand", Active: true}},
		Calendar: catalog.Calendar{Holidays: []catalog.Holiday{{Date: "17.12.2025", Name: "Founders Day"}}},
	}
}

func TestPlannerSchedulesAndSeats(t *testing.T) {
	report, err := newPlanner(plannerCatalog(), zap.NewNop()).Run(context.Background(), planOptions{
		Category:  models.CategorySemester,
		Year:      3,
		Parity:    models.ParityOdd,
		StartDate: "15.12.2025",
		EndDate:   "20.12.2025",
		Seed:      7,
	})
	require.NoError(t, err)

	assert.NotContains(t, report.Dates, "17.12.2025")
	assert.Equal(t, models.OccupancyOnePerBench, report.Mode)
	assert.Len(t, report.Schedule.Exams, 2)
	require.NotEmpty(t, report.Slots)

	seated := 0
	for _, slot := range report.Slots {
		seated += slot.Seated
		assert.Zero(t, slot.PendingInvigilators)
	}
	assert.Equal(t, 3, seated)
	assert.Zero(t, report.Unseated)
}

func TestPlannerRejectsBadDates(t *testing.T) {
	_, err := newPlanner(plannerCatalog(), nil).Run(context.Background(), planOptions{
		Category:  models.CategorySemester,
		Year:      3,
		Parity:    models.ParityOdd,
		StartDate: "15/12/2025",
		EndDate:   "20.12.2025",
	})
	require.Error(t, err)
}

func TestOptionsFromFlags(t *testing.T) {
	v, err := loadOptions([]string{"--data", "/tmp/cat", "--category", "internal", "--year", "2", "--parity", "even", "--start", "01.03.2026", "--end", "10.03.2026"})
	require.NoError(t, err)

	opts, err := optionsFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cat", opts.DataDir)
	assert.Equal(t, models.CategoryInternal, opts.Category)
	assert.Equal(t, models.ParityEven, opts.Parity)
	assert.Equal(t, 2, opts.Year)

	_, err = optionsFrom(viper.New())
	require.Error(t, err)
}
