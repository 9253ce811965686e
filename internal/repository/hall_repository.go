package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// HallRepository reads exam hall definitions.
type HallRepository struct {
	db *sqlx.DB
}

// NewHallRepository creates the repository.
func NewHallRepository(db *sqlx.DB) *HallRepository {
	return &HallRepository{db: db}
}

// ListActive returns halls available for seating.
func (r *HallRepository) ListActive(ctx context.Context) ([]models.Hall, error) {
	const query = `SELECT id, name, capacity, columns, active FROM halls WHERE active = TRUE AND capacity > 0 ORDER BY capacity ASC, name ASC`
	var halls []models.Hall
	if err := r.db.SelectContext(ctx, &halls, query); err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}
