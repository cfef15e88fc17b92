// File: internal/verification/service.go
package verification

import (
	"context"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/notification"
	"albash_solutions_backend/internal/reputation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines identity verification operations.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, req SubmitVerificationRequest) (*VerificationRequest, error)
	GetMyRequests(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]VerificationRequest, *common.Pagination, error)
	ListPending(ctx context.Context, page, pageSize int) ([]VerificationRequest, *common.Pagination, error)
	Review(ctx context.Context, id uuid.UUID, req ReviewVerificationRequest) (*VerificationRequest, error)
}

type service struct {
	repo                Repository
	reputationService   reputation.Service
	notificationService notification.Service
	cfg                 *config.Config
	logger              *zap.Logger
}

// NewService creates a new verification service.
func NewService(
	repo Repository,
	reputationService reputation.Service,
	notificationService notification.Service,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		repo:                repo,
		reputationService:   reputationService,
		notificationService: notificationService,
		cfg:                 cfg,
		logger:              logger.Named("verification-service"),
	}
}

// Submit files a new verification request. A user may have at most one
// pending request at a time.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, req SubmitVerificationRequest) (*VerificationRequest, error) {
	pending, err := s.repo.HasPendingRequest(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to check for pending verification request", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not submit verification request.")
	}
	if pending {
		return nil, common.ErrConflict.WithDetails("You already have a pending verification request.")
	}

	request := &VerificationRequest{
		UserID:      userID,
		Status:      StatusPending,
		DocumentURL: req.DocumentURL,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		s.logger.Error("Failed to create verification request", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not submit verification request.")
	}

	s.logger.Info("Verification request submitted",
		zap.String("requestID", request.ID.String()),
		zap.String("userID", userID.String()))
	return request, nil
}

// GetMyRequests lists the user's own verification requests.
func (s *service) GetMyRequests(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]VerificationRequest, *common.Pagination, error) {
	requests, pagination, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list verification requests", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve verification requests.")
	}
	return requests, pagination, nil
}

// ListPending lists the review queue, oldest first.
func (s *service) ListPending(ctx context.Context, page, pageSize int) ([]VerificationRequest, *common.Pagination, error) {
	requests, pagination, err := s.repo.ListPending(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list pending verification requests", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve verification requests.")
	}
	return requests, pagination, nil
}

// Review resolves a pending request. Approval flips the user's verified
// flag and credits reputation; rejection clears the flag and stores the
// reviewer's notes. The reputation credit and the notification are
// best-effort once the review itself is committed.
func (s *service) Review(ctx context.Context, id uuid.UUID, req ReviewVerificationRequest) (*VerificationRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := StatusRejected
	if req.Decision == "approve" {
		status = StatusApproved
	}

	now := time.Now()
	ok, err := s.repo.Review(ctx, id, status, req.ReviewNotes, now)
	if err != nil {
		if _, isAPI := common.IsAPIError(err); isAPI {
			return nil, err
		}
		s.logger.Error("Failed to review verification request", zap.Error(err), zap.String("requestID", id.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not review verification request.")
	}
	if !ok {
		return nil, common.ErrConflict.WithDetails("Verification request has already been reviewed.")
	}

	request.Status = status
	request.ReviewNotes = req.ReviewNotes
	request.ReviewDate = &now

	s.logger.Info("Verification request reviewed",
		zap.String("requestID", id.String()),
		zap.String("userID", request.UserID.String()),
		zap.String("status", string(status)))

	if status == StatusApproved {
		if points := s.cfg.VerificationReputationPoints; points > 0 {
			if _, err := s.reputationService.AdjustScore(ctx, request.UserID, points, reputation.ReasonVerificationApproved); err != nil {
				s.logger.Warn("Failed to credit reputation after verification approval",
					zap.Error(err), zap.String("userID", request.UserID.String()))
			}
		}
		s.notify(ctx, request.UserID, "Verification approved",
			"Your identity verification was approved. Your account is now verified.",
			notification.VerificationApproved, &request.ID)
	} else {
		s.notify(ctx, request.UserID, "Verification rejected",
			"Your identity verification was rejected. See the review notes for details.",
			notification.VerificationRejected, &request.ID)
	}

	return request, nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, title, message string, notifType notification.NotificationType, referenceID *uuid.UUID) {
	if err := s.notificationService.Notify(ctx, userID, title, message, notifType, referenceID); err != nil {
		s.logger.Warn("Failed to emit verification notification",
			zap.Error(err), zap.String("userID", userID.String()))
	}
}
