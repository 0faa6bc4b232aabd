package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/upravdom/problembot/internal/models"
)

func candidate(due string, assignees ...int64) models.ProblemWithList {
	c := models.ProblemWithList{ListCode: "spring-2026", ListTitle: "Весенний обход"}
	c.Number = 7
	c.Title = "Покраска ограждения"
	c.Status = models.ProblemStatusInProgress
	if due != "" {
		c.DueDate = &due
	}
	c.SetAssignees(assignees)
	return c
}

func TestDeriveReminders_Window(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		due      string
		daysLeft int
		included bool
	}{
		{"2026-08-29", 0, false}, // срок вчера, уже просрочено
		{"2026-08-30", 0, true},
		{"2026-08-31", 1, true},
		{"2026-09-01", 2, true},
		{"2026-09-02", 3, true},
		{"2026-09-03", 4, false}, // слишком рано напоминать
	}

	for _, tc := range cases {
		got := DeriveReminders([]models.ProblemWithList{candidate(tc.due, 100)}, today)
		if !tc.included {
			assert.Empty(t, got, "срок %s не должен давать напоминание", tc.due)
			continue
		}
		assert.Len(t, got, 1, "срок %s должен давать напоминание", tc.due)
		assert.Equal(t, tc.daysLeft, got[0].DaysLeft)
	}
}

func TestDeriveReminders_SkipsMalformedDueDate(t *testing.T) {
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	bad := candidate("31.08.2026", 100)
	missing := candidate("", 100)

	got := DeriveReminders([]models.ProblemWithList{bad, missing}, today)

	assert.Empty(t, got)
}

func TestDeriveReminders_FansOutPerAssignee(t *testing.T) {
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	got := DeriveReminders([]models.ProblemWithList{candidate("2026-09-01", 100, 101, 102)}, today)

	assert.Len(t, got, 3)
	ids := []int64{got[0].AssigneeID, got[1].AssigneeID, got[2].AssigneeID}
	assert.ElementsMatch(t, []int64{100, 101, 102}, ids)
	for _, r := range got {
		assert.Equal(t, 2, r.DaysLeft)
		assert.Equal(t, "spring-2026", r.ListCode)
	}
}

type mockReminderSource struct {
	mock.Mock
}

func (m *mockReminderSource) ListReminderCandidates(ctx context.Context) ([]models.ProblemWithList, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ProblemWithList), args.Error(1)
}

func TestReminderService_SendDueReminders_DeliveryFailureDoesNotStopOthers(t *testing.T) {
	source := new(mockReminderSource)
	notifier := new(mockNotifier)
	svc := NewReminderService(source, notifier)
	ctx := context.Background()

	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	source.On("ListReminderCandidates", ctx).Return([]models.ProblemWithList{candidate("2026-08-31", 100, 101)}, nil)
	notifier.On("NotifyUser", ctx, int64(100), EventReminder, mock.Anything).Return(errors.New("сеть недоступна"))
	notifier.On("NotifyUser", ctx, int64(101), EventReminder, mock.Anything).Return(nil)

	sent, err := svc.SendDueReminders(ctx, today)

	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	notifier.AssertNumberOfCalls(t, "NotifyUser", 2)
}

func TestReminderService_SendDueReminders_TextMentionsDeadline(t *testing.T) {
	source := new(mockReminderSource)
	notifier := new(mockNotifier)
	svc := NewReminderService(source, notifier)
	ctx := context.Background()

	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	source.On("ListReminderCandidates", ctx).Return([]models.ProblemWithList{candidate("2026-08-30", 100)}, nil)

	var payload map[string]any
	notifier.On("NotifyUser", ctx, int64(100), EventReminder, mock.Anything).
		Run(func(args mock.Arguments) {
			payload = args.Get(3).(map[string]any)
		}).
		Return(nil)

	sent, err := svc.SendDueReminders(ctx, today)

	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, payload["text"], "сегодня")
	assert.Contains(t, payload["text"], "Покраска ограждения")
	assert.Equal(t, 0, payload["days_left"])
}
