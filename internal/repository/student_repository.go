package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// ExamStudentRepository resolves who sits which exam.
type ExamStudentRepository struct {
	db *sqlx.DB
}

// NewExamStudentRepository constructs the repository.
func NewExamStudentRepository(db *sqlx.DB) *ExamStudentRepository {
	return &ExamStudentRepository{db: db}
}

// ListRoster returns the distinct active students enrolled regularly in any of
// regularSubjectIDs or carrying an arrear in any of arrearSubjectIDs.
func (r *ExamStudentRepository) ListRoster(ctx context.Context, regularSubjectIDs, arrearSubjectIDs []string) ([]models.ExamStudent, error) {
	if len(regularSubjectIDs) == 0 && len(arrearSubjectIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT DISTINCT st.id, st.register_number, st.name, st.department
FROM students st
JOIN student_subjects ss ON ss.student_id = st.id
WHERE st.active AND (
	(NOT ss.is_arrear AND ss.subject_id = ANY($1)) OR
	(ss.is_arrear AND ss.subject_id = ANY($2))
)
ORDER BY st.department ASC, st.register_number ASC`
	var students []models.ExamStudent
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(nonNil(regularSubjectIDs)), pq.Array(nonNil(arrearSubjectIDs))); err != nil {
		return nil, fmt.Errorf("list exam roster: %w", err)
	}
	return students, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
