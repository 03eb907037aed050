package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id uint64, userID string) error
}

// Notifier delivers a message to a user without failing the caller.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind Kind, title, message string)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, string, Kind, string, string) {}
