// File: internal/reputation/service_test.go
package reputation

import (
	"context"
	"errors"
	"testing"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockReputationRepository is a mock type for reputation.Repository
type MockReputationRepository struct {
	mock.Mock
}

func (m *MockReputationRepository) AdjustScore(ctx context.Context, userID uuid.UUID, delta int, reason string) (int, error) {
	args := m.Called(ctx, userID, delta, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockReputationRepository) GetScore(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReputationRepository) GetHistory(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]ReputationLog, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var entries []ReputationLog
	if args.Get(0) != nil {
		entries = args.Get(0).([]ReputationLog)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return entries, pagination, args.Error(2)
}

// MockNotificationService is a mock type for notification.Service
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string, notifType notification.NotificationType, referenceID *uuid.UUID) error {
	args := m.Called(ctx, userID, title, message, notifType, referenceID)
	return args.Error(0)
}

func (m *MockNotificationService) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]notification.Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return nil, nil, args.Error(2)
}

func (m *MockNotificationService) MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func setupReputationService() (Service, *MockReputationRepository, *MockNotificationService) {
	mockRepo := new(MockReputationRepository)
	mockNotif := new(MockNotificationService)
	return NewService(mockRepo, mockNotif, zap.NewNop()), mockRepo, mockNotif
}

func TestAdjustScore_Success(t *testing.T) {
	svc, mockRepo, mockNotif := setupReputationService()
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("AdjustScore", ctx, userID, 50, ReasonVerificationApproved).Return(50, nil)
	mockNotif.On("Notify", ctx, userID, mock.Anything, mock.Anything, notification.ReputationAdjusted, (*uuid.UUID)(nil)).Return(nil)

	newScore, err := svc.AdjustScore(ctx, userID, 50, ReasonVerificationApproved)

	assert.NoError(t, err)
	assert.Equal(t, 50, newScore)
	mockRepo.AssertExpectations(t)
	mockNotif.AssertExpectations(t)
}

func TestAdjustScore_NotificationFailureDoesNotFailAdjustment(t *testing.T) {
	svc, mockRepo, mockNotif := setupReputationService()
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("AdjustScore", ctx, userID, -10, ReasonAdminAdjustment).Return(0, nil)
	mockNotif.On("Notify", ctx, userID, mock.Anything, mock.Anything, notification.ReputationAdjusted, (*uuid.UUID)(nil)).
		Return(errors.New("notification store unavailable"))

	newScore, err := svc.AdjustScore(ctx, userID, -10, ReasonAdminAdjustment)

	assert.NoError(t, err)
	assert.Equal(t, 0, newScore)
}

func TestAdjustScore_ZeroPointsRejected(t *testing.T) {
	svc, mockRepo, _ := setupReputationService()

	_, err := svc.AdjustScore(context.Background(), uuid.New(), 0, ReasonAdminAdjustment)

	assert.ErrorIs(t, err, common.ErrBadRequest)
	mockRepo.AssertNotCalled(t, "AdjustScore")
}

func TestAdjustScore_UserNotFound(t *testing.T) {
	svc, mockRepo, mockNotif := setupReputationService()
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("AdjustScore", ctx, userID, 5, ReasonAdminAdjustment).
		Return(0, common.ErrNotFound.WithDetails("User not found for reputation adjustment."))

	_, err := svc.AdjustScore(ctx, userID, 5, ReasonAdminAdjustment)

	assert.ErrorIs(t, err, common.ErrNotFound)
	mockNotif.AssertNotCalled(t, "Notify")
}

func TestGetScore(t *testing.T) {
	svc, mockRepo, _ := setupReputationService()
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetScore", ctx, userID).Return(120, nil)

	score, err := svc.GetScore(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, 120, score)
}

func TestGetHistory(t *testing.T) {
	svc, mockRepo, _ := setupReputationService()
	ctx := context.Background()
	userID := uuid.New()

	entries := []ReputationLog{{ID: uuid.New(), UserID: userID, Delta: 50, Reason: ReasonVerificationApproved}}
	pagination := common.NewPagination(1, 1, 20)
	mockRepo.On("GetHistory", ctx, userID, 1, 20).Return(entries, pagination, nil)

	got, p, err := svc.GetHistory(ctx, userID, 1, 20)

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, pagination, p)
}
