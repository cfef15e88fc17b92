// File: internal/message/service.go
package message

import (
	"context"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/notification"
	"albash_solutions_backend/internal/swap"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines swap-scoped messaging operations. Participant checks
// ride on the swap service's access control.
type Service interface {
	SendMessage(ctx context.Context, senderID, swapRequestID uuid.UUID, req SendMessageRequest) (*Message, error)
	GetMessagesForSwap(ctx context.Context, actorID uuid.UUID, role string, swapRequestID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error)
	MarkConversationRead(ctx context.Context, actorID, swapRequestID uuid.UUID) (int64, error)
}

type service struct {
	repo                Repository
	swapService         swap.Service
	notificationService notification.Service
	logger              *zap.Logger
}

// NewService creates a new message service.
func NewService(repo Repository, swapService swap.Service, notificationService notification.Service, logger *zap.Logger) Service {
	return &service{
		repo:                repo,
		swapService:         swapService,
		notificationService: notificationService,
		logger:              logger.Named("message-service"),
	}
}

// SendMessage posts a message into the swap's conversation. The
// recipient is always the counterparty; non-participants get a
// forbidden error from the swap lookup.
func (s *service) SendMessage(ctx context.Context, senderID, swapRequestID uuid.UUID, req SendMessageRequest) (*Message, error) {
	swapReq, err := s.swapService.GetSwap(ctx, senderID, common.RoleUser, swapRequestID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		SwapRequestID: swapRequestID,
		SenderID:      senderID,
		RecipientID:   swapReq.Counterparty(senderID),
		Body:          req.Body,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to create message", zap.Error(err), zap.String("swapID", swapRequestID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not send message.")
	}

	if err := s.notificationService.Notify(ctx, msg.RecipientID, "New message",
		"You have a new message on one of your swaps.", notification.NewMessage, &swapRequestID); err != nil {
		s.logger.Warn("Failed to emit message notification",
			zap.Error(err), zap.String("recipientID", msg.RecipientID.String()))
	}

	return msg, nil
}

// GetMessagesForSwap retrieves the conversation, participants and
// admins only.
func (s *service) GetMessagesForSwap(ctx context.Context, actorID uuid.UUID, role string, swapRequestID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error) {
	if _, err := s.swapService.GetSwap(ctx, actorID, role, swapRequestID); err != nil {
		return nil, nil, err
	}

	messages, pagination, err := s.repo.ListBySwap(ctx, swapRequestID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list messages", zap.Error(err), zap.String("swapID", swapRequestID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve messages.")
	}
	return messages, pagination, nil
}

// MarkConversationRead marks every unread message addressed to the
// actor within the swap as read.
func (s *service) MarkConversationRead(ctx context.Context, actorID, swapRequestID uuid.UUID) (int64, error) {
	if _, err := s.swapService.GetSwap(ctx, actorID, common.RoleUser, swapRequestID); err != nil {
		return 0, err
	}

	count, err := s.repo.MarkReadForRecipient(ctx, swapRequestID, actorID)
	if err != nil {
		s.logger.Error("Failed to mark conversation read", zap.Error(err), zap.String("swapID", swapRequestID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not mark messages as read.")
	}
	return count, nil
}
