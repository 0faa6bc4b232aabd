package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type ListRepository struct {
	db *sqlx.DB
}

func NewListRepository(db *sqlx.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProblemList, error) {
	var list models.ProblemList
	err := r.db.GetContext(ctx, &list, `SELECT * FROM problem_lists WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *ListRepository) GetByCode(ctx context.Context, code string) (*models.ProblemList, error) {
	var list models.ProblemList
	err := r.db.GetContext(ctx, &list, `SELECT * FROM problem_lists WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetOrCreate возвращает список по коду, создавая его при необходимости.
func (r *ListRepository) GetOrCreate(ctx context.Context, code, title string) (*models.ProblemList, error) {
	list, err := r.GetByCode(ctx, code)
	if err == nil {
		return list, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	if title == "" {
		title = code
	}
	created := &models.ProblemList{Code: code, Title: title}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO problem_lists (code, title) VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id, code, title, is_closed, closed_at
	`, code, title).Scan(&created.ID, &created.Code, &created.Title, &created.IsClosed, &created.ClosedAt)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *ListRepository) ListAll(ctx context.Context, onlyOpen bool) ([]models.ProblemList, error) {
	query := `SELECT * FROM problem_lists ORDER BY code`
	if onlyOpen {
		query = `SELECT * FROM problem_lists WHERE is_closed = FALSE ORDER BY code`
	}
	var lists []models.ProblemList
	err := r.db.SelectContext(ctx, &lists, query)
	return lists, err
}

// Close закрывает список. Повторный вызов по уже закрытому списку — no-op,
// closed_at не перезаписывается.
func (r *ListRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE problem_lists SET is_closed = TRUE, closed_at = $2
		WHERE id = $1 AND is_closed = FALSE
	`, id, at)
	return err
}

// StatusCounts возвращает количество проблем списка по каждому статусу.
func (r *ListRepository) StatusCounts(ctx context.Context, listID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM problems WHERE list_id = $1 GROUP BY status
	`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var cnt int
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, err
		}
		counts[status] = cnt
	}
	return counts, rows.Err()
}
