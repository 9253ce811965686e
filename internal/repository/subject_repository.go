package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// ExamSubjectRepository reads the subject catalog and enrolment counts.
type ExamSubjectRepository struct {
	db *sqlx.DB
}

// NewExamSubjectRepository creates a new repository instance.
func NewExamSubjectRepository(db *sqlx.DB) *ExamSubjectRepository {
	return &ExamSubjectRepository{db: db}
}

// ListRegular returns subjects of the given year and parity examined in category,
// counting students enrolled regularly.
func (r *ExamSubjectRepository) ListRegular(ctx context.Context, year int, parity models.SemesterParity, category models.ExamCategory) ([]models.ExamSubject, error) {
	const query = `SELECT s.id, s.code, s.name, s.department, s.year, s.parity, s.weight, s.category,
	COUNT(DISTINCT st.id) AS student_count, 'REGULAR' AS track
FROM exam_subjects s
LEFT JOIN student_subjects ss ON ss.subject_id = s.id AND NOT ss.is_arrear
LEFT JOIN students st ON st.id = ss.student_id AND st.active
WHERE s.year = $1 AND s.parity = $2 AND s.category IN ($3, 'BOTH')
GROUP BY s.id, s.code, s.name, s.department, s.year, s.parity, s.weight, s.category
ORDER BY s.department ASC, s.code ASC`
	var subjects []models.ExamSubject
	if err := r.db.SelectContext(ctx, &subjects, query, year, parity, category); err != nil {
		return nil, fmt.Errorf("list regular exam subjects: %w", err)
	}
	return subjects, nil
}

// ListArrears returns semester subjects of the given parity that at least one
// active student still has to clear.
func (r *ExamSubjectRepository) ListArrears(ctx context.Context, year int, parity models.SemesterParity) ([]models.ExamSubject, error) {
	const query = `SELECT s.id, s.code, s.name, s.department, s.year, s.parity, s.weight, s.category,
	COUNT(DISTINCT st.id) AS student_count, 'ARREAR' AS track
FROM exam_subjects s
JOIN student_subjects ss ON ss.subject_id = s.id AND ss.is_arrear
JOIN students st ON st.id = ss.student_id AND st.active
WHERE s.year = $1 AND s.parity = $2 AND s.category IN ('SEMESTER', 'BOTH')
GROUP BY s.id, s.code, s.name, s.department, s.year, s.parity, s.weight, s.category
HAVING COUNT(DISTINCT st.id) > 0
ORDER BY s.department ASC, s.code ASC`
	var subjects []models.ExamSubject
	if err := r.db.SelectContext(ctx, &subjects, query, year, parity); err != nil {
		return nil, fmt.Errorf("list arrear exam subjects: %w", err)
	}
	return subjects, nil
}
