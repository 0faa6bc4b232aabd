package ws

import (
	"context"
)

// HubNotifier доставляет события сервисов пользователям через хаб.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier создаёт новый адаптер.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyUser реализует интерфейс service.Notifier.
func (n *HubNotifier) NotifyUser(_ context.Context, userID int64, event string, data any) error {
	return n.hub.BroadcastToUser(userID, event, data)
}
