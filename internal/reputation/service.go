// File: internal/reputation/service.go
package reputation

import (
	"context"
	"fmt"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines reputation operations. AdjustScore is consumed by the
// verification and swap modules as a side-effect applier.
type Service interface {
	AdjustScore(ctx context.Context, userID uuid.UUID, points int, reason string) (int, error)
	GetScore(ctx context.Context, userID uuid.UUID) (int, error)
	GetHistory(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]ReputationLog, *common.Pagination, error)
}

type service struct {
	repo                Repository
	notificationService notification.Service
	logger              *zap.Logger
}

// NewService creates a new reputation service.
func NewService(repo Repository, notificationService notification.Service, logger *zap.Logger) Service {
	return &service{
		repo:                repo,
		notificationService: notificationService,
		logger:              logger.Named("reputation-service"),
	}
}

// AdjustScore applies a score change and records it. The write is
// atomic; the recipient notification afterwards is best-effort.
func (s *service) AdjustScore(ctx context.Context, userID uuid.UUID, points int, reason string) (int, error) {
	if points == 0 {
		return 0, common.ErrBadRequest.WithDetails("Adjustment points must be non-zero.")
	}

	newScore, err := s.repo.AdjustScore(ctx, userID, points, reason)
	if err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return 0, err
		}
		s.logger.Error("Failed to adjust reputation score",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.Int("points", points),
			zap.String("reason", reason))
		return 0, common.ErrInternalServer.WithDetails("Could not adjust reputation score.")
	}

	s.logger.Info("Reputation score adjusted",
		zap.String("userID", userID.String()),
		zap.Int("points", points),
		zap.String("reason", reason),
		zap.Int("newScore", newScore))

	if notifErr := s.notificationService.Notify(ctx, userID,
		"Reputation updated",
		fmt.Sprintf("Your reputation score changed by %+d (%s).", points, reason),
		notification.ReputationAdjusted, nil); notifErr != nil {
		s.logger.Warn("Failed to send reputation notification",
			zap.Error(notifErr), zap.String("userID", userID.String()))
	}

	return newScore, nil
}

func (s *service) GetScore(ctx context.Context, userID uuid.UUID) (int, error) {
	score, err := s.repo.GetScore(ctx, userID)
	if err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return 0, err
		}
		s.logger.Error("Failed to read reputation score", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not read reputation score.")
	}
	return score, nil
}

func (s *service) GetHistory(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]ReputationLog, *common.Pagination, error) {
	entries, pagination, err := s.repo.GetHistory(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to fetch reputation history", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve reputation history.")
	}
	return entries, pagination, nil
}
