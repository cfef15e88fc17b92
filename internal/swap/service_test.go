// File: internal/swap/service_test.go
package swap

import (
	"context"
	"testing"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/listing"
	"albash_solutions_backend/internal/notification"
	"albash_solutions_backend/internal/reputation"
	"albash_solutions_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSwapRepository is a mock type for swap.Repository
type MockSwapRepository struct {
	mock.Mock
}

func (m *MockSwapRepository) CreateSwap(ctx context.Context, swap *SwapRequest) error {
	args := m.Called(ctx, swap)
	if args.Error(0) == nil && swap.ID == uuid.Nil {
		swap.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockSwapRepository) FindSwapByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*SwapRequest, error) {
	args := m.Called(ctx, id, preloadAssociations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SwapRequest), args.Error(1)
}

func (m *MockSwapRepository) ListSwapsForUser(ctx context.Context, userID uuid.UUID, query SwapListQuery) ([]SwapRequest, *common.Pagination, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]SwapRequest), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockSwapRepository) HasPendingSwap(ctx context.Context, initiatorID, targetUserID uuid.UUID, targetListingID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, initiatorID, targetUserID, targetListingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSwapRepository) TransitionSwapStatus(ctx context.Context, id uuid.UUID, from []SwapStatus, to SwapStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockSwapRepository) SetSwapContractHash(ctx context.Context, id uuid.UUID, hash string) (bool, error) {
	args := m.Called(ctx, id, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockSwapRepository) CreateCounterOffer(ctx context.Context, counter *SwapCounterOffer) error {
	args := m.Called(ctx, counter)
	if args.Error(0) == nil && counter.ID == uuid.Nil {
		counter.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockSwapRepository) FindCounterOfferByID(ctx context.Context, id uuid.UUID, preloadParent bool) (*SwapCounterOffer, error) {
	args := m.Called(ctx, id, preloadParent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SwapCounterOffer), args.Error(1)
}

func (m *MockSwapRepository) ListCounterOffers(ctx context.Context, swapRequestID uuid.UUID) ([]SwapCounterOffer, error) {
	args := m.Called(ctx, swapRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SwapCounterOffer), args.Error(1)
}

func (m *MockSwapRepository) TransitionCounterOfferStatus(ctx context.Context, id uuid.UUID, from, to CounterOfferStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockSwapRepository) AcceptCounterOffer(ctx context.Context, counter *SwapCounterOffer) error {
	args := m.Called(ctx, counter)
	return args.Error(0)
}

func (m *MockSwapRepository) ExpireCounterOffers(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSwapRepository) UpsertContract(ctx context.Context, contract *SwapContract, party ContractParty) error {
	args := m.Called(ctx, contract, party)
	if args.Error(0) == nil && contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockSwapRepository) FindContractBySwapID(ctx context.Context, swapRequestID uuid.UUID) (*SwapContract, error) {
	args := m.Called(ctx, swapRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SwapContract), args.Error(1)
}

// MockListingService is a mock type for listing.Service
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, userID uuid.UUID, req listing.CreateListingRequest) (*listing.Listing, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingService) GetListingByID(ctx context.Context, id uuid.UUID, authenticatedUserID *uuid.UUID, role string) (*listing.Listing, error) {
	args := m.Called(ctx, id, authenticatedUserID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingService) GetListingBySlug(ctx context.Context, slugStr string, authenticatedUserID *uuid.UUID, role string) (*listing.Listing, error) {
	args := m.Called(ctx, slugStr, authenticatedUserID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingService) UpdateListing(ctx context.Context, id uuid.UUID, userID uuid.UUID, req listing.UpdateListingRequest) (*listing.Listing, error) {
	args := m.Called(ctx, id, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingService) DeleteListing(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockListingService) SearchListings(ctx context.Context, query listing.ListingSearchQuery) ([]listing.Listing, *common.Pagination, error) {
	args := m.Called(ctx, query)
	return nil, nil, args.Error(2)
}

func (m *MockListingService) GetUserListings(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]listing.Listing, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return nil, nil, args.Error(2)
}

func (m *MockListingService) AdminUpdateListingStatus(ctx context.Context, id uuid.UUID, status listing.ListingStatus, adminNotes *string) (*listing.Listing, error) {
	args := m.Called(ctx, id, status, adminNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingService) MarkListingsSwapped(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockSharedUserService is a mock type for shared.Service
type MockSharedUserService struct {
	mock.Mock
}

func (m *MockSharedUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

func (m *MockSharedUserService) GetOrCreateUserFromFirebaseClaims(ctx context.Context, token *firebaseauth.Token) (*shared.User, bool, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*shared.User), args.Bool(1), args.Error(2)
}

func (m *MockSharedUserService) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*shared.User, error) {
	args := m.Called(ctx, firebaseUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
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

// MockReputationService is a mock type for reputation.Service
type MockReputationService struct {
	mock.Mock
}

func (m *MockReputationService) AdjustScore(ctx context.Context, userID uuid.UUID, points int, reason string) (int, error) {
	args := m.Called(ctx, userID, points, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockReputationService) GetScore(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReputationService) GetHistory(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]reputation.ReputationLog, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return nil, nil, args.Error(2)
}

type swapServiceTestSuite struct {
	service      *ServiceImplementation
	mockRepo     *MockSwapRepository
	mockListings *MockListingService
	mockUsers    *MockSharedUserService
	mockNotif    *MockNotificationService
	mockRep      *MockReputationService
}

func setupSwapService() *swapServiceTestSuite {
	ts := &swapServiceTestSuite{
		mockRepo:     new(MockSwapRepository),
		mockListings: new(MockListingService),
		mockUsers:    new(MockSharedUserService),
		mockNotif:    new(MockNotificationService),
		mockRep:      new(MockReputationService),
	}
	ts.service = NewService(
		ts.mockRepo,
		ts.mockListings,
		ts.mockUsers,
		ts.mockNotif,
		ts.mockRep,
		&config.Config{
			CounterOfferExpiryHours:        72,
			SwapCompletionReputationPoints: 10,
		},
		zap.NewNop(),
	)
	return ts
}

func pendingSwap(initiatorID, targetID uuid.UUID) *SwapRequest {
	return &SwapRequest{
		BaseModel:    common.BaseModel{ID: uuid.New()},
		InitiatorID:  initiatorID,
		TargetUserID: targetID,
		Status:       SwapStatusPending,
		Terms:        common.JSONMap{"item": "camera"},
	}
}

func TestProposeSwap_CreatesPendingAndNotifiesTarget(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()

	ts.mockUsers.On("GetUserByID", ctx, targetID).Return(&shared.User{ID: targetID}, nil)
	ts.mockRepo.On("HasPendingSwap", ctx, initiatorID, targetID, (*uuid.UUID)(nil)).Return(false, nil)
	ts.mockRepo.On("CreateSwap", ctx, mock.AnythingOfType("*swap.SwapRequest")).Run(func(args mock.Arguments) {
		s := args.Get(1).(*SwapRequest)
		assert.Equal(t, SwapStatusPending, s.Status)
		assert.Equal(t, initiatorID, s.InitiatorID)
		assert.Equal(t, targetID, s.TargetUserID)
	}).Return(nil)
	ts.mockNotif.On("Notify", ctx, targetID, mock.Anything, mock.Anything, notification.SwapProposed, mock.Anything).Return(nil)

	swapReq, err := ts.service.ProposeSwap(ctx, initiatorID, ProposeSwapRequest{
		TargetUserID: targetID.String(),
		Terms:        common.JSONMap{"item": "camera"},
	})

	assert.NoError(t, err)
	assert.Equal(t, SwapStatusPending, swapReq.Status)
	ts.mockRepo.AssertExpectations(t)
	ts.mockNotif.AssertExpectations(t)
}

func TestProposeSwap_SelfTargetRejected(t *testing.T) {
	ts := setupSwapService()
	userID := uuid.New()

	_, err := ts.service.ProposeSwap(context.Background(), userID, ProposeSwapRequest{
		TargetUserID: userID.String(),
	})

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	ts.mockRepo.AssertNotCalled(t, "CreateSwap")
}

func TestProposeSwap_DuplicatePendingConflicts(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()

	ts.mockUsers.On("GetUserByID", ctx, targetID).Return(&shared.User{ID: targetID}, nil)
	ts.mockRepo.On("HasPendingSwap", ctx, initiatorID, targetID, (*uuid.UUID)(nil)).Return(true, nil)

	_, err := ts.service.ProposeSwap(ctx, initiatorID, ProposeSwapRequest{
		TargetUserID: targetID.String(),
	})

	assert.ErrorIs(t, err, common.ErrConflict)
	ts.mockRepo.AssertNotCalled(t, "CreateSwap")
}

func TestProposeSwap_OfferedListingMustBelongToInitiator(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	listingID := uuid.New()

	ts.mockUsers.On("GetUserByID", ctx, targetID).Return(&shared.User{ID: targetID}, nil)
	ts.mockListings.On("GetListingByID", ctx, listingID, &initiatorID, common.RoleUser).Return(&listing.Listing{
		BaseModel: common.BaseModel{ID: listingID},
		UserID:    uuid.New(), // someone else's listing
		Status:    listing.StatusActive,
	}, nil)

	offered := listingID.String()
	_, err := ts.service.ProposeSwap(ctx, initiatorID, ProposeSwapRequest{
		TargetUserID:      targetID.String(),
		OfferingListingID: &offered,
	})

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestRespondToSwap_AcceptOnPending(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("TransitionSwapStatus", ctx, swapReq.ID, []SwapStatus{SwapStatusPending}, SwapStatusAccepted).Return(true, nil)
	ts.mockNotif.On("Notify", ctx, initiatorID, mock.Anything, mock.Anything, notification.SwapAccepted, mock.Anything).Return(nil)

	got, err := ts.service.RespondToSwap(ctx, targetID, swapReq.ID, "accept")

	assert.NoError(t, err)
	assert.Equal(t, SwapStatusAccepted, got.Status)
	ts.mockNotif.AssertExpectations(t)
}

func TestRespondToSwap_NonParticipantForbidden(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	swapReq := pendingSwap(uuid.New(), uuid.New())

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)

	_, err := ts.service.RespondToSwap(ctx, uuid.New(), swapReq.ID, "accept")

	assert.ErrorIs(t, err, common.ErrForbidden)
	ts.mockRepo.AssertNotCalled(t, "TransitionSwapStatus")
}

func TestRespondToSwap_AlreadyResolvedConflicts(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	// Another request won the race; zero rows matched the precondition.
	ts.mockRepo.On("TransitionSwapStatus", ctx, swapReq.ID, []SwapStatus{SwapStatusPending}, SwapStatusAccepted).Return(false, nil)

	_, err := ts.service.RespondToSwap(ctx, targetID, swapReq.ID, "accept")

	assert.ErrorIs(t, err, common.ErrConflict)
	ts.mockNotif.AssertNotCalled(t, "Notify")
}

func TestCancelSwap_TerminalStateConflicts(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusRejected

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("TransitionSwapStatus", ctx, swapReq.ID,
		[]SwapStatus{SwapStatusPending, SwapStatusAccepted, SwapStatusDisputed}, SwapStatusCancelled).Return(false, nil)

	_, err := ts.service.CancelSwap(ctx, initiatorID, swapReq.ID)

	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCompleteSwap_RequiresSignedContract(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted // no ContractHash yet

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)

	_, err := ts.service.CompleteSwap(ctx, initiatorID, swapReq.ID)

	assert.ErrorIs(t, err, common.ErrConflict)
	ts.mockRepo.AssertNotCalled(t, "TransitionSwapStatus")
}

func TestCompleteSwap_MarksListingsAndCreditsBothParties(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	offeredID := uuid.New()
	wantedID := uuid.New()
	hash := "deadbeef"

	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted
	swapReq.ContractHash = &hash
	swapReq.OfferingListingID = &offeredID
	swapReq.TargetListingID = &wantedID

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("TransitionSwapStatus", ctx, swapReq.ID, []SwapStatus{SwapStatusAccepted}, SwapStatusCompleted).Return(true, nil)
	ts.mockListings.On("MarkListingsSwapped", ctx, []uuid.UUID{offeredID, wantedID}).Return(nil)
	ts.mockRep.On("AdjustScore", ctx, initiatorID, 10, reputation.ReasonSwapCompleted).Return(10, nil)
	ts.mockRep.On("AdjustScore", ctx, targetID, 10, reputation.ReasonSwapCompleted).Return(10, nil)
	ts.mockNotif.On("Notify", ctx, targetID, mock.Anything, mock.Anything, notification.SwapCompleted, mock.Anything).Return(nil)

	got, err := ts.service.CompleteSwap(ctx, initiatorID, swapReq.ID)

	assert.NoError(t, err)
	assert.Equal(t, SwapStatusCompleted, got.Status)
	ts.mockListings.AssertExpectations(t)
	ts.mockRep.AssertExpectations(t)
}

func TestCompleteSwap_SideEffectFailureDoesNotFailCompletion(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	offeredID := uuid.New()
	hash := "deadbeef"

	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted
	swapReq.ContractHash = &hash
	swapReq.OfferingListingID = &offeredID

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("TransitionSwapStatus", ctx, swapReq.ID, []SwapStatus{SwapStatusAccepted}, SwapStatusCompleted).Return(true, nil)
	ts.mockListings.On("MarkListingsSwapped", ctx, []uuid.UUID{offeredID}).Return(common.ErrInternalServer)
	ts.mockRep.On("AdjustScore", ctx, mock.Anything, 10, reputation.ReasonSwapCompleted).Return(0, common.ErrInternalServer).Twice()
	// The target completes, so the notification goes to the initiator.
	ts.mockNotif.On("Notify", ctx, initiatorID, mock.Anything, mock.Anything, notification.SwapCompleted, mock.Anything).Return(nil)

	got, err := ts.service.CompleteSwap(ctx, targetID, swapReq.ID)

	assert.NoError(t, err)
	assert.Equal(t, SwapStatusCompleted, got.Status)
}

func TestDisputeSwap_OnlyFromAccepted(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("TransitionSwapStatus", ctx, swapReq.ID, []SwapStatus{SwapStatusAccepted}, SwapStatusDisputed).Return(false, nil)

	_, err := ts.service.DisputeSwap(ctx, targetID, swapReq.ID)

	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestGetSwap_AdminSeesAnySwap(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	swapReq := pendingSwap(uuid.New(), uuid.New())
	adminID := uuid.New()

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, true).Return(swapReq, nil)

	got, err := ts.service.GetSwap(ctx, adminID, common.RoleAdmin, swapReq.ID)
	assert.NoError(t, err)
	assert.Equal(t, swapReq.ID, got.ID)

	_, err = ts.service.GetSwap(ctx, adminID, common.RoleUser, swapReq.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreateCounterOffer_OnlyTargetMayCounter(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)

	_, err := ts.service.CreateCounterOffer(ctx, initiatorID, swapReq.ID, CreateCounterOfferRequest{
		CounterTerms: common.JSONMap{"item": "camera plus tripod"},
	})

	assert.ErrorIs(t, err, common.ErrForbidden)
	ts.mockRepo.AssertNotCalled(t, "CreateCounterOffer")
}

func TestCreateCounterOffer_NotifiesInitiatorWithCounterReference(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("CreateCounterOffer", ctx, mock.AnythingOfType("*swap.SwapCounterOffer")).Run(func(args mock.Arguments) {
		c := args.Get(1).(*SwapCounterOffer)
		assert.Equal(t, CounterStatusPending, c.Status)
		assert.Equal(t, targetID, c.CounterInitiatorID)
		assert.NotNil(t, c.ExpiresAt) // default expiry applied
	}).Return(nil)
	ts.mockNotif.On("Notify", ctx, initiatorID, mock.Anything, mock.Anything, notification.SwapCounterOffer,
		mock.MatchedBy(func(ref *uuid.UUID) bool { return ref != nil })).Return(nil)

	counter, err := ts.service.CreateCounterOffer(ctx, targetID, swapReq.ID, CreateCounterOfferRequest{
		CounterTerms: common.JSONMap{"item": "camera plus tripod"},
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, counter.ID)
	ts.mockNotif.AssertExpectations(t)
}

func TestCreateCounterOffer_NonPendingSwapConflicts(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)

	_, err := ts.service.CreateCounterOffer(ctx, targetID, swapReq.ID, CreateCounterOfferRequest{
		CounterTerms: common.JSONMap{"item": "other"},
	})

	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestAcceptCounterOffer_OnlyInitiatorMayAccept(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	counter := &SwapCounterOffer{
		BaseModel:          common.BaseModel{ID: uuid.New()},
		SwapRequestID:      swapReq.ID,
		CounterInitiatorID: targetID,
		Status:             CounterStatusPending,
		SwapRequest:        swapReq,
	}
	ts.mockRepo.On("FindCounterOfferByID", ctx, counter.ID, true).Return(counter, nil)

	_, err := ts.service.AcceptCounterOffer(ctx, targetID, counter.ID)

	assert.ErrorIs(t, err, common.ErrForbidden)
	ts.mockRepo.AssertNotCalled(t, "AcceptCounterOffer")
}

func TestAcceptCounterOffer_Success(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	future := time.Now().Add(time.Hour)

	counter := &SwapCounterOffer{
		BaseModel:          common.BaseModel{ID: uuid.New()},
		SwapRequestID:      swapReq.ID,
		CounterInitiatorID: targetID,
		CounterTerms:       common.JSONMap{"item": "camera plus tripod"},
		Status:             CounterStatusPending,
		ExpiresAt:          &future,
		SwapRequest:        swapReq,
	}
	ts.mockRepo.On("FindCounterOfferByID", ctx, counter.ID, true).Return(counter, nil)
	ts.mockRepo.On("AcceptCounterOffer", ctx, counter).Return(nil)
	ts.mockNotif.On("Notify", ctx, targetID, mock.Anything, mock.Anything, notification.SwapCounterAccepted, mock.Anything).Return(nil)

	got, err := ts.service.AcceptCounterOffer(ctx, initiatorID, counter.ID)

	assert.NoError(t, err)
	assert.Equal(t, CounterStatusAccepted, got.Status)
	ts.mockRepo.AssertExpectations(t)
}

func TestAcceptCounterOffer_ExpiredConflictsAndSweeps(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	past := time.Now().Add(-time.Hour)

	counter := &SwapCounterOffer{
		BaseModel:          common.BaseModel{ID: uuid.New()},
		SwapRequestID:      swapReq.ID,
		CounterInitiatorID: targetID,
		Status:             CounterStatusPending,
		ExpiresAt:          &past,
		SwapRequest:        swapReq,
	}
	ts.mockRepo.On("FindCounterOfferByID", ctx, counter.ID, true).Return(counter, nil)
	ts.mockRepo.On("TransitionCounterOfferStatus", ctx, counter.ID, CounterStatusPending, CounterStatusExpired).Return(true, nil)

	_, err := ts.service.AcceptCounterOffer(ctx, initiatorID, counter.ID)

	assert.ErrorIs(t, err, common.ErrConflict)
	ts.mockRepo.AssertNotCalled(t, "AcceptCounterOffer")
	ts.mockRepo.AssertExpectations(t)
}

func TestRejectCounterOffer_NotifiesAuthor(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)

	counter := &SwapCounterOffer{
		BaseModel:          common.BaseModel{ID: uuid.New()},
		SwapRequestID:      swapReq.ID,
		CounterInitiatorID: targetID,
		Status:             CounterStatusPending,
		SwapRequest:        swapReq,
	}
	ts.mockRepo.On("FindCounterOfferByID", ctx, counter.ID, true).Return(counter, nil)
	ts.mockRepo.On("TransitionCounterOfferStatus", ctx, counter.ID, CounterStatusPending, CounterStatusRejected).Return(true, nil)
	ts.mockNotif.On("Notify", ctx, targetID, mock.Anything, mock.Anything, notification.SwapCounterRejected, mock.Anything).Return(nil)

	got, err := ts.service.RejectCounterOffer(ctx, initiatorID, counter.ID)

	assert.NoError(t, err)
	assert.Equal(t, CounterStatusRejected, got.Status)
	ts.mockNotif.AssertExpectations(t)
}

func TestSignContract_NonParticipantForbidden(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	swapReq := pendingSwap(uuid.New(), uuid.New())
	swapReq.Status = SwapStatusAccepted

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)

	_, err := ts.service.SignContract(ctx, uuid.New(), swapReq.ID, SignContractRequest{})

	assert.ErrorIs(t, err, common.ErrForbidden)
	ts.mockRepo.AssertNotCalled(t, "UpsertContract")
}

func TestSignContract_FirstSignatureCreatesContract(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("FindContractBySwapID", ctx, swapReq.ID).Return(nil, common.ErrNotFound)
	ts.mockRepo.On("UpsertContract", ctx, mock.AnythingOfType("*swap.SwapContract"), ContractPartyInitiator).Return(nil)
	ts.mockNotif.On("Notify", ctx, targetID, mock.Anything, mock.Anything, notification.SwapContractSigned, mock.Anything).Return(nil)

	contract, err := ts.service.SignContract(ctx, initiatorID, swapReq.ID, SignContractRequest{})

	assert.NoError(t, err)
	assert.Equal(t, swapReq.ID, contract.SwapRequestID)
	assert.NotNil(t, contract.DigitalSignatureInitiator) // generated token
	assert.NotNil(t, contract.SignedAtInitiator)
	assert.Nil(t, contract.DigitalSignatureTarget)
	assert.NotEmpty(t, contract.ContractHash)
	// Half-signed: the parent swap must not get the hash yet.
	ts.mockRepo.AssertNotCalled(t, "SetSwapContractHash")
}

func TestSignContract_SecondSignatureWritesHashOntoSwap(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted

	initiatorSig := "sig-initiator"
	signedAt := time.Now().Add(-time.Minute)
	existing := &SwapContract{
		BaseModel:                 common.BaseModel{ID: uuid.New()},
		SwapRequestID:             swapReq.ID,
		ContractTerms:             common.JSONMap{"item": "camera"},
		ContractHash:              "stale",
		DigitalSignatureInitiator: &initiatorSig,
		SignedAtInitiator:         &signedAt,
	}

	wantHash, err := ComputeContractHash(existing.ContractTerms)
	assert.NoError(t, err)

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("FindContractBySwapID", ctx, swapReq.ID).Return(existing, nil)
	ts.mockRepo.On("UpsertContract", ctx, mock.AnythingOfType("*swap.SwapContract"), ContractPartyTarget).Return(nil)
	ts.mockRepo.On("SetSwapContractHash", ctx, swapReq.ID, wantHash).Return(true, nil)
	ts.mockNotif.On("Notify", ctx, initiatorID, mock.Anything, mock.Anything, notification.SwapContractSigned, mock.Anything).Return(nil)

	targetSig := "sig-target"
	contract, err := ts.service.SignContract(ctx, targetID, swapReq.ID, SignContractRequest{Signature: &targetSig})

	assert.NoError(t, err)
	assert.True(t, contract.IsFullyExecuted())
	assert.Equal(t, wantHash, contract.ContractHash)
	assert.Equal(t, initiatorSig, *contract.DigitalSignatureInitiator) // untouched
	assert.Equal(t, targetSig, *contract.DigitalSignatureTarget)
	ts.mockRepo.AssertExpectations(t)
}

func TestSignContract_FullyExecutedIsImmutable(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID)
	swapReq.Status = SwapStatusAccepted

	sigA, sigB := "sig-a", "sig-b"
	executed := &SwapContract{
		SwapRequestID:             swapReq.ID,
		ContractTerms:             common.JSONMap{"item": "camera"},
		DigitalSignatureInitiator: &sigA,
		DigitalSignatureTarget:    &sigB,
	}

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("FindContractBySwapID", ctx, swapReq.ID).Return(executed, nil)

	_, err := ts.service.SignContract(ctx, initiatorID, swapReq.ID, SignContractRequest{})

	assert.ErrorIs(t, err, common.ErrConflict)
	ts.mockRepo.AssertNotCalled(t, "UpsertContract")
}

func TestSignContract_PendingSwapDoesNotGetHash(t *testing.T) {
	ts := setupSwapService()
	ctx := context.Background()
	initiatorID := uuid.New()
	targetID := uuid.New()
	swapReq := pendingSwap(initiatorID, targetID) // still pending

	initiatorSig := "sig-initiator"
	existing := &SwapContract{
		SwapRequestID:             swapReq.ID,
		ContractTerms:             common.JSONMap{"item": "camera"},
		DigitalSignatureInitiator: &initiatorSig,
	}

	ts.mockRepo.On("FindSwapByID", ctx, swapReq.ID, false).Return(swapReq, nil)
	ts.mockRepo.On("FindContractBySwapID", ctx, swapReq.ID).Return(existing, nil)
	ts.mockRepo.On("UpsertContract", ctx, mock.AnythingOfType("*swap.SwapContract"), ContractPartyTarget).Return(nil)
	ts.mockNotif.On("Notify", ctx, initiatorID, mock.Anything, mock.Anything, notification.SwapContractSigned, mock.Anything).Return(nil)

	contract, err := ts.service.SignContract(ctx, targetID, swapReq.ID, SignContractRequest{})

	assert.NoError(t, err)
	assert.True(t, contract.IsFullyExecuted())
	ts.mockRepo.AssertNotCalled(t, "SetSwapContractHash")
}
