// Package catalog holds subject, student, hall and teacher records loaded from
// flat files so the planner can run without a database.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// Catalog is an in-memory snapshot of everything a planning run reads.
type Catalog struct {
	Subjects []models.ExamSubject
	Students []StudentRecord
	Halls    []models.Hall
	Teachers []models.Invigilator
	Calendar Calendar
}

// StudentRecord is a student with the subject codes they sit regularly and as
// arrears. Inactive students are neither counted nor seated.
type StudentRecord struct {
	models.ExamStudent
	Regular []string
	Arrears []string
	Active  bool
}

// ListRegular mirrors the subject repository: subjects of year and parity that
// are examined in category, with their regular enrolment counts.
func (c *Catalog) ListRegular(ctx context.Context, year int, parity models.SemesterParity, category models.ExamCategory) ([]models.ExamSubject, error) {
	var out []models.ExamSubject
	for _, subject := range c.Subjects {
		if subject.Year != year || subject.Parity != parity {
			continue
		}
		if subject.Category != category && subject.Category != models.CategoryBoth {
			continue
		}
		subject.StudentCount = c.count(subject.Code, false)
		subject.Track = models.TrackRegular
		out = append(out, subject)
	}
	sortSubjects(out)
	return out, nil
}

// ListArrears returns semester subjects of year and parity that someone still has to clear.
func (c *Catalog) ListArrears(ctx context.Context, year int, parity models.SemesterParity) ([]models.ExamSubject, error) {
	var out []models.ExamSubject
	for _, subject := range c.Subjects {
		if subject.Year != year || subject.Parity != parity || subject.Category == models.CategoryInternal {
			continue
		}
		n := c.count(subject.Code, true)
		if n == 0 {
			continue
		}
		subject.StudentCount = n
		subject.Track = models.TrackArrear
		out = append(out, subject)
	}
	sortSubjects(out)
	return out, nil
}

// ListRoster returns the distinct students sitting any of the given subjects,
// ordered by department and register number.
func (c *Catalog) ListRoster(ctx context.Context, regularSubjectIDs, arrearSubjectIDs []string) ([]models.ExamStudent, error) {
	regular := toSet(regularSubjectIDs)
	arrear := toSet(arrearSubjectIDs)

	var roster []models.ExamStudent
	for _, student := range c.Students {
		if !student.Active {
			continue
		}
		if anyIn(student.Regular, regular) || anyIn(student.Arrears, arrear) {
			roster = append(roster, student.ExamStudent)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].Department != roster[j].Department {
			return roster[i].Department < roster[j].Department
		}
		return roster[i].RegisterNumber < roster[j].RegisterNumber
	})
	return roster, nil
}

// ActiveHalls returns halls that can be used for seating.
func (c *Catalog) ActiveHalls() []models.Hall {
	out := make([]models.Hall, 0, len(c.Halls))
	for _, h := range c.Halls {
		if h.Active {
			out = append(out, h)
		}
	}
	return out
}

// TeacherNames returns active invigilators in file order.
func (c *Catalog) TeacherNames() []string {
	names := make([]string, 0, len(c.Teachers))
	for _, t := range c.Teachers {
		if t.Active {
			names = append(names, t.Name)
		}
	}
	return names
}

func (c *Catalog) count(code string, arrear bool) int {
	n := 0
	for _, student := range c.Students {
		if !student.Active {
			continue
		}
		codes := student.Regular
		if arrear {
			codes = student.Arrears
		}
		for _, candidate := range codes {
			if strings.EqualFold(candidate, code) {
				n++
				break
			}
		}
	}
	return n
}

func sortSubjects(subjects []models.ExamSubject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Department != subjects[j].Department {
			return subjects[i].Department < subjects[j].Department
		}
		return subjects[i].Code < subjects[j].Code
	})
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = struct{}{}
	}
	return set
}

func anyIn(codes []string, set map[string]struct{}) bool {
	for _, code := range codes {
		if _, ok := set[strings.ToUpper(code)]; ok {
			return true
		}
	}
	return false
}
