// File: internal/listing/service_test.go
package listing

import (
	"context"
	"testing"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/notification"
	platformES "albash_solutions_backend/internal/platform/elasticsearch"
	"albash_solutions_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockListingRepository is a mock type for listing.Repository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	if args.Error(0) == nil && listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID, preloadUser bool) (*Listing, error) {
	args := m.Called(ctx, id, preloadUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockListingRepository) FindBySlug(ctx context.Context, slug string) (*Listing, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockListingRepository) Search(ctx context.Context, query ListingSearchQuery) ([]Listing, *common.Pagination, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Listing), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockListingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus, adminNotes *string) error {
	args := m.Called(ctx, id, status, adminNotes)
	return args.Error(0)
}

func (m *MockListingRepository) MarkSwapped(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Listing, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
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

type listingServiceTestSuite struct {
	service   *ServiceImplementation
	mockRepo  *MockListingRepository
	mockUsers *MockSharedUserService
	mockNotif *MockNotificationService
}

func setupListingService() *listingServiceTestSuite {
	ts := &listingServiceTestSuite{
		mockRepo:  new(MockListingRepository),
		mockUsers: new(MockSharedUserService),
		mockNotif: new(MockNotificationService),
	}
	ts.service = NewService(
		ts.mockRepo,
		ts.mockUsers,
		ts.mockNotif,
		&platformES.ESClientWrapper{}, // search disabled in unit tests
		&config.Config{},
		zap.NewNop(),
	)
	return ts
}

func TestCreateListing_PhysicalIsActiveImmediately(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	userID := uuid.New()

	ts.mockRepo.On("Create", ctx, mock.AnythingOfType("*listing.Listing")).Run(func(args mock.Arguments) {
		l := args.Get(1).(*Listing)
		assert.Equal(t, StatusActive, l.Status)
		assert.Equal(t, TypePhysical, l.ListingType)
		assert.NotEmpty(t, l.Slug)
	}).Return(nil)

	l, err := ts.service.CreateListing(ctx, userID, CreateListingRequest{
		Title:       "Vintage camera",
		Description: "A working film camera.",
		ListingType: "physical",
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusActive, l.Status)
	ts.mockRepo.AssertExpectations(t)
	ts.mockUsers.AssertNotCalled(t, "GetUserByID")
}

func TestCreateListing_TokenizedRequiresVerifiedAccount(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	userID := uuid.New()
	tokenRef := "chain:asset:123"

	ts.mockUsers.On("GetUserByID", ctx, userID).Return(&shared.User{ID: userID, IsVerified: false}, nil)

	_, err := ts.service.CreateListing(ctx, userID, CreateListingRequest{
		Title:          "Tokenized art piece",
		Description:    "On-chain collectible.",
		ListingType:    "tokenized",
		TokenReference: &tokenRef,
	})

	assert.ErrorIs(t, err, common.ErrForbidden)
	ts.mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateListing_TokenizedStartsPendingAndNotifies(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	userID := uuid.New()
	tokenRef := "chain:asset:123"

	ts.mockUsers.On("GetUserByID", ctx, userID).Return(&shared.User{ID: userID, IsVerified: true}, nil)
	ts.mockRepo.On("Create", ctx, mock.AnythingOfType("*listing.Listing")).Return(nil)
	ts.mockNotif.On("Notify", ctx, userID, mock.Anything, mock.Anything, notification.ListingPending, mock.Anything).Return(nil)

	l, err := ts.service.CreateListing(ctx, userID, CreateListingRequest{
		Title:          "Tokenized art piece",
		Description:    "On-chain collectible.",
		ListingType:    "tokenized",
		TokenReference: &tokenRef,
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, l.Status)
	ts.mockNotif.AssertExpectations(t)
}

func TestCreateListing_TokenReferenceRejectedForPhysical(t *testing.T) {
	ts := setupListingService()
	tokenRef := "chain:asset:123"

	_, err := ts.service.CreateListing(context.Background(), uuid.New(), CreateListingRequest{
		Title:          "Bike",
		Description:    "City bike.",
		ListingType:    "physical",
		TokenReference: &tokenRef,
	})

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestGetListingByID_PendingHiddenFromStrangers(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	ownerID := uuid.New()
	strangerID := uuid.New()
	listingID := uuid.New()

	pending := &Listing{
		BaseModel: common.BaseModel{ID: listingID},
		UserID:    ownerID,
		Status:    StatusPendingApproval,
	}
	ts.mockRepo.On("FindByID", ctx, listingID, true).Return(pending, nil)

	_, err := ts.service.GetListingByID(ctx, listingID, &strangerID, common.RoleUser)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := ts.service.GetListingByID(ctx, listingID, &ownerID, common.RoleUser)
	assert.NoError(t, err)
	assert.Equal(t, listingID, got.ID)

	got, err = ts.service.GetListingByID(ctx, listingID, &strangerID, common.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, listingID, got.ID)
}

func TestUpdateListing_OnlyOwner(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	ownerID := uuid.New()
	listingID := uuid.New()

	existing := &Listing{
		BaseModel: common.BaseModel{ID: listingID},
		UserID:    ownerID,
		Status:    StatusActive,
	}
	ts.mockRepo.On("FindByID", ctx, listingID, false).Return(existing, nil)

	_, err := ts.service.UpdateListing(ctx, listingID, uuid.New(), UpdateListingRequest{})

	assert.ErrorIs(t, err, common.ErrForbidden)
	ts.mockRepo.AssertNotCalled(t, "Update")
}

func TestUpdateListing_SwappedIsImmutable(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	ownerID := uuid.New()
	listingID := uuid.New()

	existing := &Listing{
		BaseModel: common.BaseModel{ID: listingID},
		UserID:    ownerID,
		Status:    StatusSwapped,
	}
	ts.mockRepo.On("FindByID", ctx, listingID, false).Return(existing, nil)

	_, err := ts.service.UpdateListing(ctx, listingID, ownerID, UpdateListingRequest{})

	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestSearchListings_DefaultsToActive(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()

	ts.mockRepo.On("Search", ctx, mock.MatchedBy(func(q ListingSearchQuery) bool {
		return q.Status != nil && *q.Status == StatusActive
	})).Return([]Listing{}, common.NewPagination(0, 1, 20), nil)

	_, _, err := ts.service.SearchListings(ctx, ListingSearchQuery{Page: 1, PageSize: 20})

	assert.NoError(t, err)
	ts.mockRepo.AssertExpectations(t)
}

func TestMarkListingsSwapped(t *testing.T) {
	ts := setupListingService()
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	ts.mockRepo.On("MarkSwapped", ctx, ids).Return(int64(2), nil)

	err := ts.service.MarkListingsSwapped(ctx, ids)

	assert.NoError(t, err)
	ts.mockRepo.AssertExpectations(t)
}
