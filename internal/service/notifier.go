package service

import "context"

// События, уходящие в шлюз уведомлений.
const (
	EventReportSubmitted = "report_submitted"
	EventReportEscalated = "report_escalated"
	EventReportAccepted  = "report_accepted"
	EventReportRejected  = "report_rejected"
	EventReminder        = "reminder"
	EventActGenerated    = "act_generated"
)

// Notifier доставляет событие конкретному пользователю. Реализация —
// внешний транспорт (WebSocket-хаб шлюза); доставка best-effort, ошибка
// одного получателя никогда не прерывает обработку остальных.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, event string, data any) error
}
