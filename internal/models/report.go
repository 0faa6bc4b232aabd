package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы отчёта.
const (
	ReportStatusPending  = "pending"
	ReportStatusAccepted = "accepted"
	ReportStatusRejected = "rejected"
)

// Решения админов по отчёту.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Типы вложений отчёта.
const (
	MediaKindPhoto    = "photo"
	MediaKindVideo    = "video"
	MediaKindAudio    = "audio"
	MediaKindDocument = "document"
	MediaKindText     = "text"
)

// Report — одна попытка сдачи задачи. Каждая пересдача создаёт новую
// запись; статус проблемы определяется последним (живым) отчётом.
type Report struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProblemID   uuid.UUID `db:"problem_id" json:"problem_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Status      string    `db:"status" json:"status"`
	AdminReason *string   `db:"admin_reason" json:"admin_reason,omitempty"`
	AdminID     *int64    `db:"admin_id" json:"admin_id,omitempty"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// ReportReview — голос отдельного админа по отчёту.
// Один админ — одно решение: повторный голос перезаписывает прежний.
type ReportReview struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ReportID  uuid.UUID `db:"report_id" json:"report_id"`
	AdminID   int64     `db:"admin_id" json:"admin_id"`
	Decision  string    `db:"decision" json:"decision"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReportMedia — метаданные вложения. Сами байты лежат в файловом
// хранилище, здесь только вид, путь и подпись.
type ReportMedia struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ReportID uuid.UUID `db:"report_id" json:"report_id"`
	Kind     string    `db:"kind" json:"kind"`
	FilePath *string   `db:"file_path" json:"file_path,omitempty"`
	Caption  *string   `db:"caption" json:"caption,omitempty"`
}

// ActEntry — факт формирования акта по задаче для конкретного исполнителя.
// Пара (problem_id, assignee) уникальна: по ней повторный акт не создаётся.
type ActEntry struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProblemID uuid.UUID `db:"problem_id" json:"problem_id"`
	Assignee  int64     `db:"assignee" json:"assignee"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
