package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// InvigilatorRepository reads the invigilation roster.
type InvigilatorRepository struct {
	db *sqlx.DB
}

// NewInvigilatorRepository creates the repository.
func NewInvigilatorRepository(db *sqlx.DB) *InvigilatorRepository {
	return &InvigilatorRepository{db: db}
}

// ListActive returns active invigilators in roster order.
func (r *InvigilatorRepository) ListActive(ctx context.Context) ([]models.Invigilator, error) {
	const query = `SELECT id, name, department, active FROM invigilators WHERE active = TRUE ORDER BY name ASC`
	var list []models.Invigilator
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("list invigilators: %w", err)
	}
	return list, nil
}
