package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/upravdom/problembot/internal/models"
)

type StaffRepository struct {
	db *sqlx.DB
}

func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Upsert обновляет запись справочника по внешнему ID исполнителя.
func (r *StaffRepository) Upsert(ctx context.Context, staff *models.Staff) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO staff (assignee, post, fio)
		VALUES ($1, $2, $3)
		ON CONFLICT (assignee) DO UPDATE
		SET post = EXCLUDED.post, fio = EXCLUDED.fio
		RETURNING id
	`, staff.Assignee, staff.Post, staff.FIO).
		Scan(&staff.ID)
}

func (r *StaffRepository) GetByAssignee(ctx context.Context, assignee int64) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.GetContext(ctx, &staff, `SELECT * FROM staff WHERE assignee = $1`, assignee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *StaffRepository) ListAll(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	err := r.db.SelectContext(ctx, &staff, `SELECT * FROM staff ORDER BY assignee`)
	return staff, err
}
