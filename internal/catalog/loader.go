package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// File names expected inside a catalog directory.
const (
	SubjectsFile = "subjects.csv"
	StudentsFile = "students.csv"
	HallsFile    = "halls.csv"
	TeachersFile = "teachers.csv"
	HolidaysFile = "holidays.yaml"
)

// codeList is a ';' separated list of subject codes inside one CSV cell.
type codeList []string

func (l *codeList) UnmarshalCSV(raw string) error {
	*l = nil
	for _, part := range strings.Split(raw, ";") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			*l = append(*l, code)
		}
	}
	return nil
}

// parseActive treats a missing or empty "active" cell as active.
func parseActive(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid active flag %q", raw)
}

type subjectRow struct {
	Code       string `csv:"code"`
	Name       string `csv:"name"`
	Department string `csv:"department"`
	Year       int    `csv:"year"`
	Parity     string `csv:"parity"`
	Weight     string `csv:"weight"`
	Category   string `csv:"category"`
}

type studentRow struct {
	RegisterNumber string   `csv:"register_number"`
	Name           string   `csv:"name"`
	Department     string   `csv:"department"`
	Subjects       codeList `csv:"subjects"`
	Arrears        codeList `csv:"arrears"`
	Active         string   `csv:"active"`
}

type hallRow struct {
	Name     string `csv:"name"`
	Capacity int    `csv:"capacity"`
	Columns  int    `csv:"columns"`
	Active   string `csv:"active"`
}

type teacherRow struct {
	Name       string `csv:"name"`
	Department string `csv:"department"`
	Active     string `csv:"active"`
}

func init() {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		return r
	})
}

// LoadDir reads the four CSV files and the optional holiday calendar from dir.
func LoadDir(dir string) (*Catalog, error) {
	cat := &Catalog{}

	subjects, err := openCSV(dir, SubjectsFile)
	if err != nil {
		return nil, err
	}
	defer subjects.Close()
	if cat.Subjects, err = ReadSubjects(subjects); err != nil {
		return nil, fmt.Errorf("%s: %w", SubjectsFile, err)
	}

	students, err := openCSV(dir, StudentsFile)
	if err != nil {
		return nil, err
	}
	defer students.Close()
	if cat.Students, err = ReadStudents(students); err != nil {
		return nil, fmt.Errorf("%s: %w", StudentsFile, err)
	}

	halls, err := openCSV(dir, HallsFile)
	if err != nil {
		return nil, err
	}
	defer halls.Close()
	if cat.Halls, err = ReadHalls(halls); err != nil {
		return nil, fmt.Errorf("%s: %w", HallsFile, err)
	}

	teachers, err := openCSV(dir, TeachersFile)
	if err != nil {
		return nil, err
	}
	defer teachers.Close()
	if cat.Teachers, err = ReadTeachers(teachers); err != nil {
		return nil, fmt.Errorf("%s: %w", TeachersFile, err)
	}

	calendar, err := LoadCalendar(filepath.Join(dir, HolidaysFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if calendar != nil {
		cat.Calendar = *calendar
	}
	return cat, nil
}

func openCSV(dir, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// ReadSubjects parses subjects.csv. The subject code doubles as its ID.
func ReadSubjects(in io.Reader) ([]models.ExamSubject, error) {
	var rows []*subjectRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	subjects := make([]models.ExamSubject, 0, len(rows))
	for i, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(row.Code))
		if code == "" {
			return nil, fmt.Errorf("row %d: code is required", i+2)
		}
		parity := models.SemesterParity(strings.ToUpper(row.Parity))
		if !parity.Valid() {
			return nil, fmt.Errorf("row %d: invalid parity %q", i+2, row.Parity)
		}
		weight := models.WeightClass(strings.ToUpper(row.Weight))
		if weight != models.WeightHeavy && weight != models.WeightNonMajor {
			return nil, fmt.Errorf("row %d: invalid weight %q", i+2, row.Weight)
		}
		category := models.ExamCategory(strings.ToUpper(row.Category))
		if category == "" {
			category = models.CategoryBoth
		}
		subjects = append(subjects, models.ExamSubject{
			ID:         code,
			Code:       code,
			Name:       row.Name,
			Department: strings.ToUpper(row.Department),
			Year:       row.Year,
			Parity:     parity,
			Weight:     weight,
			Category:   category,
		})
	}
	return subjects, nil
}

// ReadStudents parses students.csv. The register number doubles as the student ID.
func ReadStudents(in io.Reader) ([]StudentRecord, error) {
	var rows []*studentRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	students := make([]StudentRecord, 0, len(rows))
	for i, row := range rows {
		if row.RegisterNumber == "" {
			return nil, fmt.Errorf("row %d: register_number is required", i+2)
		}
		active, err := parseActive(row.Active)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		students = append(students, StudentRecord{
			ExamStudent: models.ExamStudent{
				ID:             row.RegisterNumber,
				RegisterNumber: row.RegisterNumber,
				Name:           row.Name,
				Department:     strings.ToUpper(row.Department),
			},
			Regular: row.Subjects,
			Arrears: row.Arrears,
			Active:  active,
		})
	}
	return students, nil
}

// ReadHalls parses halls.csv. Capacity counts benches.
func ReadHalls(in io.Reader) ([]models.Hall, error) {
	var rows []*hallRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	halls := make([]models.Hall, 0, len(rows))
	for i, row := range rows {
		if row.Capacity < 0 {
			return nil, fmt.Errorf("row %d: capacity must not be negative", i+2)
		}
		active, err := parseActive(row.Active)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		halls = append(halls, models.Hall{
			ID:       row.Name,
			Name:     row.Name,
			Capacity: row.Capacity,
			Columns:  row.Columns,
			Active:   active,
		})
	}
	return halls, nil
}

// ReadTeachers parses teachers.csv. File order is the invigilation order.
func ReadTeachers(in io.Reader) ([]models.Invigilator, error) {
	var rows []*teacherRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	teachers := make([]models.Invigilator, 0, len(rows))
	for i, row := range rows {
		active, err := parseActive(row.Active)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		teachers = append(teachers, models.Invigilator{
			ID:         row.Name,
			Name:       row.Name,
			Department: row.Department,
			Active:     active,
		})
	}
	return teachers, nil
}

// Holiday is one non-exam day.
type Holiday struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// Calendar is the optional holidays.yaml document.
type Calendar struct {
	WeekendMode string    `yaml:"weekend_mode"`
	Holidays    []Holiday `yaml:"holidays"`
}

// Dates returns the holiday dates in DD.MM.YYYY form.
func (c Calendar) Dates() []string {
	dates := make([]string, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		dates = append(dates, h.Date)
	}
	return dates
}

// LoadCalendar reads a YAML holiday calendar.
func LoadCalendar(path string) (*Calendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var calendar Calendar
	if err := yaml.Unmarshal(raw, &calendar); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &calendar, nil
}
