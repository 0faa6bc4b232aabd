package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/models"
)

// ReminderSource отдаёт проблемы, потенциально требующие напоминания:
// открытый список, заполненный срок, статус в работе / отчёт отправлен.
type ReminderSource interface {
	ListReminderCandidates(ctx context.Context) ([]models.ProblemWithList, error)
}

// Reminder — одно напоминание конкретному исполнителю.
type Reminder struct {
	ProblemID     uuid.UUID `json:"problem_id"`
	ProblemNumber int       `json:"problem_number"`
	ProblemTitle  string    `json:"problem_title"`
	ListCode      string    `json:"list_code"`
	ListTitle     string    `json:"list_title"`
	AssigneeID    int64     `json:"assignee_id"`
	DueDate       time.Time `json:"due_date"`
	DaysLeft      int       `json:"days_left"`
}

// ReminderService вычисляет и рассылает напоминания о сроках.
type ReminderService struct {
	problems ReminderSource
	notifier Notifier
}

func NewReminderService(problems ReminderSource, notifier Notifier) *ReminderService {
	return &ReminderService{problems: problems, notifier: notifier}
}

// DueReminders возвращает напоминания на дату today. Побочных эффектов нет.
// Проблема с N исполнителями даёт N напоминаний; кривой срок — пропуск.
func (s *ReminderService) DueReminders(ctx context.Context, today time.Time) ([]Reminder, error) {
	candidates, err := s.problems.ListReminderCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return DeriveReminders(candidates, today), nil
}

// DeriveReminders — чистая выборка: 0 <= дней до срока <= 3,
// развёрнутая по каждому исполнителю проблемы.
func DeriveReminders(candidates []models.ProblemWithList, today time.Time) []Reminder {
	day := today.Truncate(24 * time.Hour)

	var out []Reminder
	for _, c := range candidates {
		due, ok := c.DueDateParsed()
		if !ok {
			continue
		}
		daysLeft := int(due.Sub(day).Hours() / 24)
		if daysLeft < 0 || daysLeft > 3 {
			continue
		}
		for _, assignee := range c.Assignees() {
			out = append(out, Reminder{
				ProblemID:     c.ID,
				ProblemNumber: c.Number,
				ProblemTitle:  c.Title,
				ListCode:      c.ListCode,
				ListTitle:     c.ListTitle,
				AssigneeID:    assignee,
				DueDate:       due,
				DaysLeft:      daysLeft,
			})
		}
	}
	return out
}

// SendDueReminders — разовый прогон: выбирает напоминания на сегодня и шлёт
// их исполнителям. Ошибка доставки одному получателю не прерывает остальных.
func (s *ReminderService) SendDueReminders(ctx context.Context, today time.Time) (int, error) {
	reminders, err := s.DueReminders(ctx, today)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range reminders {
		listName := r.ListTitle
		if listName == "" {
			listName = r.ListCode
		}
		text := fmt.Sprintf(
			"⏰ Напоминание по задаче #%d из списка «%s».\n\nОписание: %s\nСрок исполнения: %s (%s).",
			r.ProblemNumber, listName, r.ProblemTitle,
			r.DueDate.Format("2006-01-02"), daysLeftText(r.DaysLeft),
		)

		err := s.notifier.NotifyUser(ctx, r.AssigneeID, EventReminder, map[string]any{
			"problem_id": r.ProblemID,
			"days_left":  r.DaysLeft,
			"text":       text,
		})
		if err != nil {
			logger.Log.WithError(err).WithField("assignee", r.AssigneeID).
				Warn("не удалось отправить напоминание")
			continue
		}
		sent++
	}
	return sent, nil
}

func daysLeftText(daysLeft int) string {
	switch daysLeft {
	case 0:
		return "сегодня"
	case 1:
		return "завтра"
	case 2:
		return "через 2 дня"
	case 3:
		return "через 3 дня"
	default:
		return fmt.Sprintf("через %d дней", daysLeft)
	}
}
