package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type ProblemRepository struct {
	db *sqlx.DB
}

func NewProblemRepository(db *sqlx.DB) *ProblemRepository {
	return &ProblemRepository{db: db}
}

func (r *ProblemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	var p models.Problem
	err := r.db.GetContext(ctx, &p, `SELECT * FROM problems WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrProblemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProblemRepository) GetByListAndNumber(ctx context.Context, listID uuid.UUID, number int) (*models.Problem, error) {
	var p models.Problem
	err := r.db.GetContext(ctx, &p, `SELECT * FROM problems WHERE list_id = $1 AND number = $2`, listID, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrProblemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProblemRepository) Create(ctx context.Context, p *models.Problem) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO problems (list_id, number, title, assignees, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.ListID, p.Number, p.Title, p.AssigneesRaw, p.DueDate, models.ProblemStatusInProgress).
		Scan(&p.ID)
}

// UpdateImported обновляет поля, приходящие из файла импорта.
// Статус и примечание при повторном импорте не трогаются.
func (r *ProblemRepository) UpdateImported(ctx context.Context, p *models.Problem) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE problems SET title = $2, assignees = $3, due_date = $4 WHERE id = $1
	`, p.ID, p.Title, p.AssigneesRaw, p.DueDate)
	return err
}

// SetStatus переводит проблему в новый статус и перезаписывает примечание.
// note == nil очищает примечание (принятие отчёта).
func (r *ProblemRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, note *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE problems SET status = $2, note = $3 WHERE id = $1
	`, id, status, note)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrProblemNotFound
	}
	return nil
}

// SetStatusKeepNote меняет только статус. Примечание (причина последнего
// отклонения) остаётся видимым до принятия отчёта.
func (r *ProblemRepository) SetStatusKeepNote(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE problems SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrProblemNotFound
	}
	return nil
}

func (r *ProblemRepository) ListByList(ctx context.Context, listID uuid.UUID) ([]models.Problem, error) {
	var out []models.Problem
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM problems WHERE list_id = $1 ORDER BY number
	`, listID)
	return out, err
}

// assigneePattern — шаблон членства исполнителя в строке assignees
// ("%,<id>,%" по списку, обёрнутому запятыми с обеих сторон).
func assigneePattern(assignee int64) string {
	return "%," + strconv.FormatInt(assignee, 10) + ",%"
}

// ListByAssignee возвращает проблемы, где исполнитель входит в множество
// назначенных (членство, не совпадение первого элемента).
func (r *ProblemRepository) ListByAssignee(ctx context.Context, assignee int64, statuses []string) ([]models.Problem, error) {
	query, args, err := sqlx.In(`
		SELECT * FROM problems
		WHERE assignees IS NOT NULL
		  AND (',' || assignees || ',') LIKE ?
		  AND status IN (?)
		ORDER BY number
	`, assigneePattern(assignee), statuses)
	if err != nil {
		return nil, err
	}
	var out []models.Problem
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

// ListReminderCandidates выбирает проблемы открытых списков с заполненным
// сроком и статусом в работе / отчёт отправлен. Разбор даты и окно
// days_left считает вызывающая сторона.
func (r *ProblemRepository) ListReminderCandidates(ctx context.Context) ([]models.ProblemWithList, error) {
	var out []models.ProblemWithList
	err := r.db.SelectContext(ctx, &out, `
		SELECT p.*, l.code AS list_code, l.title AS list_title
		FROM problems p
		JOIN problem_lists l ON l.id = p.list_id
		WHERE l.is_closed = FALSE
		  AND p.due_date IS NOT NULL
		  AND p.assignees IS NOT NULL
		  AND p.status IN ($1, $2)
		ORDER BY l.code, p.number
	`, models.ProblemStatusInProgress, models.ProblemStatusReportSent)
	return out, err
}

// ListAcceptedByAssignee возвращает принятые проблемы исполнителя,
// по которым ещё нет записи в журнале актов.
func (r *ProblemRepository) ListAcceptedByAssignee(ctx context.Context, assignee int64) ([]models.ProblemWithList, error) {
	var out []models.ProblemWithList
	err := r.db.SelectContext(ctx, &out, `
		SELECT p.*, l.code AS list_code, l.title AS list_title
		FROM problems p
		JOIN problem_lists l ON l.id = p.list_id
		WHERE p.status = $1
		  AND p.assignees IS NOT NULL
		  AND (',' || p.assignees || ',') LIKE $2
		  AND NOT EXISTS (
			SELECT 1 FROM acts a
			WHERE a.problem_id = p.id AND a.assignee = $3
		  )
		ORDER BY l.code, p.number
	`, models.ProblemStatusAccepted, assigneePattern(assignee), assignee)
	return out, err
}

// StatusCountsByAssignee — статистика задач исполнителя по статусам.
func (r *ProblemRepository) StatusCountsByAssignee(ctx context.Context, assignee int64) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM problems
		WHERE assignees IS NOT NULL
		  AND (',' || assignees || ',') LIKE $1
		GROUP BY status
	`, assigneePattern(assignee))
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

// ListOpenCodesByAssignee возвращает коды открытых списков, в которых у
// исполнителя есть непринятые задачи.
func (r *ProblemRepository) ListOpenCodesByAssignee(ctx context.Context, assignee int64) ([]string, error) {
	var codes []string
	err := r.db.SelectContext(ctx, &codes, `
		SELECT DISTINCT l.code
		FROM problem_lists l
		JOIN problems p ON p.list_id = l.id
		WHERE l.is_closed = FALSE
		  AND p.assignees IS NOT NULL
		  AND (',' || p.assignees || ',') LIKE $1
		  AND p.status IN ($2, $3, $4)
		ORDER BY l.code
	`, assigneePattern(assignee),
		models.ProblemStatusInProgress, models.ProblemStatusReportSent, models.ProblemStatusRejected)
	return codes, err
}
