package notification

import (
	"context"

	"go.uber.org/zap"

	domain "abcampus-finance/internal/domain/notification"
	"abcampus-finance/internal/infrastructure/logger"
)

const defaultListLimit = 50

var _ domain.Notifier = (*Usecase)(nil)

type Usecase struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewUsecase(r domain.Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: logger.OrNop(log)}
}

// Notify stores an in-app notification. Failures are logged and dropped.
func (u *Usecase) Notify(ctx context.Context, userID string, kind domain.Kind, title, message string) {
	n := &domain.Notification{UserID: userID, Title: title, Message: message, Type: kind}
	if err := u.repo.Create(ctx, n); err != nil {
		u.log.Warn("notification insert failed",
			zap.String("user_id", userID),
			zap.String("type", string(kind)),
			zap.Error(err))
	}
}

func (u *Usecase) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return u.repo.ListByUserID(ctx, userID, limit)
}

func (u *Usecase) MarkRead(ctx context.Context, id uint64, userID string) error {
	return u.repo.MarkRead(ctx, id, userID)
}
