package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type ActRepository struct {
	db *sqlx.DB
}

func NewActRepository(db *sqlx.DB) *ActRepository {
	return &ActRepository{db: db}
}

// InsertEntries фиксирует покрытые актом задачи одного исполнителя в одной
// транзакции: либо все пары записаны, либо ни одной. Нарушение уникальности
// (problem_id, assignee) означает гонку с параллельным проходом — Conflict.
func (r *ActRepository) InsertEntries(ctx context.Context, entries []models.ActEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range entries {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO acts (problem_id, assignee)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, entries[i].ProblemID, entries[i].Assignee).
			Scan(&entries[i].ID, &entries[i].CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return apperror.ErrActAlreadyRecorded
			}
			return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось записать акт")
		}
	}

	return tx.Commit()
}

func (r *ActRepository) ListByAssignee(ctx context.Context, assignee int64) ([]models.ActEntry, error) {
	var entries []models.ActEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM acts WHERE assignee = $1 ORDER BY created_at
	`, assignee)
	return entries, err
}
