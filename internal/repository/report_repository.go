package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO reports (problem_id, user_id)
		VALUES ($1, $2)
		RETURNING id, status, submitted_at
	`, report.ProblemID, report.UserID).
		Scan(&report.ID, &report.Status, &report.SubmittedAt)
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := r.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// lockReportStatus читает статус отчёта под блокировкой строки. Блокировка
// сериализует конкурентные голоса по одному отчёту до конца транзакции.
func lockReportStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (string, error) {
	var status string
	err := tx.GetContext(ctx, &status, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.ErrReportNotFound
	}
	return status, err
}

// Повторный голос того же админа по тому же отчёту перезаписывает решение,
// а не добавляет строку.
func upsertReviewTx(ctx context.Context, tx *sqlx.Tx, reportID uuid.UUID, adminID int64, decision string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO report_reviews (report_id, admin_id, decision)
		VALUES ($1, $2, $3)
		ON CONFLICT (report_id, admin_id) DO UPDATE
		SET decision = EXCLUDED.decision, created_at = NOW()
	`, reportID, adminID, decision)
	return err
}

func listReviewsTx(ctx context.Context, tx *sqlx.Tx, reportID uuid.UUID) ([]models.ReportReview, error) {
	var reviews []models.ReportReview
	err := tx.SelectContext(ctx, &reviews, `
		SELECT * FROM report_reviews WHERE report_id = $1 ORDER BY created_at
	`, reportID)
	return reviews, err
}

// FinalizeWithReview в одной транзакции фиксирует голос и переводит отчёт
// из pending в финальный статус. Строка отчёта берётся FOR UPDATE, проверка
// status='pending' даёт финализацию не более одного раза: проигравший гонку
// голос получает false, и его строка в report_reviews не появляется.
func (r *ReportRepository) FinalizeWithReview(ctx context.Context, id uuid.UUID, adminID int64, decision, status string, reason *string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	current, err := lockReportStatus(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if current != models.ReportStatusPending {
		return false, nil
	}

	if err := upsertReviewTx(ctx, tx, id, adminID, decision); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE reports
		SET status = $2, admin_id = $3, admin_reason = $4
		WHERE id = $1
	`, id, status, adminID, reason); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// RecordApproval фиксирует голос «принять» и возвращает срезы голосов до и
// после него, снятые в той же транзакции под блокировкой строки отчёта.
// Конкурентные голоса по одному отчёту выполняются строго по очереди, поэтому
// второй голосующий видит в «до» уже закоммиченный голос первого.
func (r *ReportRepository) RecordApproval(ctx context.Context, id uuid.UUID, adminID int64) (before, after []models.ReportReview, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	current, err := lockReportStatus(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if current != models.ReportStatusPending {
		return nil, nil, apperror.ErrReportFinalized
	}

	if before, err = listReviewsTx(ctx, tx, id); err != nil {
		return nil, nil, err
	}
	if err = upsertReviewTx(ctx, tx, id, adminID, models.DecisionApproved); err != nil {
		return nil, nil, err
	}
	if after, err = listReviewsTx(ctx, tx, id); err != nil {
		return nil, nil, err
	}
	return before, after, tx.Commit()
}

func (r *ReportRepository) ListReviews(ctx context.Context, reportID uuid.UUID) ([]models.ReportReview, error) {
	var reviews []models.ReportReview
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM report_reviews WHERE report_id = $1 ORDER BY created_at
	`, reportID)
	return reviews, err
}

func (r *ReportRepository) AddMedia(ctx context.Context, media *models.ReportMedia) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO report_media (report_id, kind, file_path, caption)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, media.ReportID, media.Kind, media.FilePath, media.Caption).
		Scan(&media.ID)
}

func (r *ReportRepository) ListMedia(ctx context.Context, reportID uuid.UUID) ([]models.ReportMedia, error) {
	var media []models.ReportMedia
	err := r.db.SelectContext(ctx, &media, `
		SELECT * FROM report_media WHERE report_id = $1 ORDER BY id
	`, reportID)
	return media, err
}
