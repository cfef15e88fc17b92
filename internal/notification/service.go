// File: internal/notification/service.go
package notification

import (
	"context"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines notification operations. Notify is consumed by the
// other modules as a side-effect emitter; the remaining methods back the
// recipient-facing endpoints.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, notifType NotificationType, referenceID *uuid.UUID) error
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("notification-service"),
	}
}

// Notify records a notification for the given user. Callers treat this
// as best-effort: a returned error must be logged, never propagated to
// the caller's own client.
func (s *service) Notify(ctx context.Context, userID uuid.UUID, title, message string, notifType NotificationType, referenceID *uuid.UUID) error {
	n := &Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        notifType,
		ReferenceID: referenceID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("type", string(notifType)))
		return err
	}
	s.logger.Debug("Notification created",
		zap.String("notificationID", n.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("type", string(notifType)))
	return nil
}

func (s *service) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to fetch notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return notifications, pagination, nil
}

func (s *service) MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to mark notification as read",
			zap.Error(err),
			zap.String("notificationID", notificationID.String()),
			zap.String("userID", userID.String()))
		return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
	}
	return nil
}

func (s *service) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not mark notifications as read.")
	}
	return count, nil
}
