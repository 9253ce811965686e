package service

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/noah-isme/exam-allocation-api/pkg/errors"
)

// WeekendMode selects which weekdays never host exams.
type WeekendMode string

const (
	WeekendSunday         WeekendMode = "SUNDAY"
	WeekendSaturdaySunday WeekendMode = "SATURDAY_SUNDAY"
)

// ParseWeekendMode normalises a configured weekend mode, defaulting to Sunday only.
func ParseWeekendMode(raw string) WeekendMode {
	if WeekendMode(strings.ToUpper(strings.TrimSpace(raw))) == WeekendSaturdaySunday {
		return WeekendSaturdaySunday
	}
	return WeekendSunday
}

func (m WeekendMode) isWeekend(day time.Weekday) bool {
	if day == time.Sunday {
		return true
	}
	return m == WeekendSaturdaySunday && day == time.Saturday
}

const displayDateLayout = "02.01.2006"

var examDateLayouts = []string{displayDateLayout, "2006-01-02"}

// ParseExamDate accepts DD.MM.YYYY or YYYY-MM-DD and returns a UTC calendar day.
func ParseExamDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range examDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid exam date %q: expected DD.MM.YYYY", raw)
}

// FormatExamDate renders a day as DD.MM.YYYY.
func FormatExamDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GenerateAvailableDates lists the exam days in [start, end] in ascending order,
// skipping weekend days and holidays.
func GenerateAvailableDates(start, end time.Time, holidays []time.Time, mode WeekendMode) ([]time.Time, error) {
	start, end = calendarDay(start), calendarDay(end)
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must not be after end date")
	}

	skip := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		skip[calendarDay(h)] = struct{}{}
	}

	var dates []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if mode.isWeekend(day.Weekday()) {
			continue
		}
		if _, ok := skip[day]; ok {
			continue
		}
		dates = append(dates, day)
	}

	if len(dates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoAvailableDates, fmt.Sprintf("no exam dates available between %s and %s", FormatExamDate(start), FormatExamDate(end)))
	}
	return dates, nil
}

func daysBetween(a, b time.Time) int {
	return int(calendarDay(b).Sub(calendarDay(a)).Hours() / 24)
}
