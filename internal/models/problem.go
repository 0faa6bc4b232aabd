package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Статусы проблемы.
const (
	ProblemStatusInProgress = "in_progress"
	ProblemStatusReportSent = "report_sent"
	ProblemStatusAccepted   = "accepted"
	ProblemStatusRejected   = "rejected"
)

// ValidProblemStatuses список валидных статусов проблем.
var ValidProblemStatuses = map[string]struct{}{
	ProblemStatusInProgress: {},
	ProblemStatusReportSent: {},
	ProblemStatusAccepted:   {},
	ProblemStatusRejected:   {},
}

// ProblemList — загруженный список проблем. IsClosed выставляется один раз,
// когда все проблемы списка приняты, и обратно не снимается.
type ProblemList struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	Code     string     `db:"code" json:"code"`
	Title    string     `db:"title" json:"title"`
	IsClosed bool       `db:"is_closed" json:"is_closed"`
	ClosedAt *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// Problem — задача из списка. Исполнители хранятся строкой через запятую
// (AssigneesRaw), наружу отдаётся разобранный срез ID.
type Problem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ListID       uuid.UUID `db:"list_id" json:"list_id"`
	Number       int       `db:"number" json:"number"`
	Title        string    `db:"title" json:"title"`
	AssigneesRaw *string   `db:"assignees" json:"-"`
	DueDate      *string   `db:"due_date" json:"due_date,omitempty"`
	Status       string    `db:"status" json:"status"`
	Note         *string   `db:"note" json:"note,omitempty"`
}

// Assignees возвращает ID исполнителей. Кривые элементы пропускаются.
func (p *Problem) Assignees() []int64 {
	if p.AssigneesRaw == nil {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(*p.AssigneesRaw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// SetAssignees сериализует срез ID в строку хранения.
func (p *Problem) SetAssignees(ids []int64) {
	if len(ids) == 0 {
		p.AssigneesRaw = nil
		return
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	raw := strings.Join(parts, ",")
	p.AssigneesRaw = &raw
}

// HasAssignee проверяет принадлежность исполнителя к задаче.
// Именно членство в множестве, а не совпадение первого элемента.
func (p *Problem) HasAssignee(id int64) bool {
	for _, a := range p.Assignees() {
		if a == id {
			return true
		}
	}
	return false
}

// DueDateParsed разбирает срок исполнения (формат YYYY-MM-DD).
// Возвращает ok=false, если срока нет или он некорректен.
func (p *Problem) DueDateParsed() (time.Time, bool) {
	if p.DueDate == nil {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*p.DueDate))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ProblemWithList — проекция "проблема + метаданные её списка",
// используется выборками напоминаний и журнала актов.
type ProblemWithList struct {
	Problem
	ListCode  string `db:"list_code"`
	ListTitle string `db:"list_title"`
}
