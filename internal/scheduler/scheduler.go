package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/service"
)

// ReminderRunner рассылает напоминания о приближающихся сроках.
type ReminderRunner interface {
	SendDueReminders(ctx context.Context, today time.Time) (int, error)
}

// ActRunner формирует акты выполненных работ.
type ActRunner interface {
	RunActSweep(ctx context.Context) ([]service.ActResult, error)
}

// Scheduler запускает периодические задачи по cron-расписанию.
type Scheduler struct {
	cron      *cron.Cron
	reminders ReminderRunner
	acts      ActRunner
}

// New создаёт планировщик без запущенных задач.
func New(reminders ReminderRunner, acts ActRunner) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		reminders: reminders,
		acts:      acts,
	}
}

// Start регистрирует задачи и запускает цикл планировщика.
func (s *Scheduler) Start(ctx context.Context, reminderSpec, actSpec string) error {
	if _, err := s.cron.AddFunc(reminderSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		sent, err := s.reminders.SendDueReminders(runCtx, time.Now().UTC())
		if err != nil {
			logger.Log.Errorf("scheduler: рассылка напоминаний завершилась с ошибкой: %v", err)
			return
		}
		logger.Log.Infof("scheduler: отправлено напоминаний: %d", sent)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(actSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		results, err := s.acts.RunActSweep(runCtx)
		if err != nil {
			logger.Log.Errorf("scheduler: формирование актов завершилось с ошибкой: %v", err)
			return
		}
		logger.Log.Infof("scheduler: сформировано актов: %d", len(results))
	}); err != nil {
		return err
	}

	s.cron.Start()
	logger.Log.Infof("scheduler: запущен (напоминания %q, акты %q)", reminderSpec, actSpec)
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
