package service

import (
	"context"

	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
)

type NotificationService interface {
	Notify(ctx context.Context, userID uint64, typ, title, body string, bicycleID, messageID, orderID *uint64)
	List(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userID uint64) error
	MarkByOrder(ctx context.Context, userID, orderID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; a failed insert must never fail the state
// transition that triggered it.
func (s *notificationService) Notify(ctx context.Context, userID uint64, typ, title, body string, bicycleID, messageID, orderID *uint64) {
	if userID == 0 || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		BicycleID: bicycleID,
		MessageID: messageID,
		OrderID:   orderID,
	}
	_ = s.repo.Create(ctx, n)
}

func (s *notificationService) List(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userID == 0 {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) MarkByOrder(ctx context.Context, userID, orderID uint64) error {
	if userID == 0 || orderID == 0 {
		return nil
	}
	return s.repo.MarkByOrder(ctx, userID, orderID)
}
