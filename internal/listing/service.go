// File: internal/listing/service.go
package listing

import (
	"context"
	"fmt"
	"strings"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/notification"
	platformES "albash_solutions_backend/internal/platform/elasticsearch"
	"albash_solutions_backend/internal/shared"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines listing operations.
type Service interface {
	CreateListing(ctx context.Context, userID uuid.UUID, req CreateListingRequest) (*Listing, error)
	GetListingByID(ctx context.Context, id uuid.UUID, authenticatedUserID *uuid.UUID, role string) (*Listing, error)
	GetListingBySlug(ctx context.Context, slugStr string, authenticatedUserID *uuid.UUID, role string) (*Listing, error)
	UpdateListing(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateListingRequest) (*Listing, error)
	DeleteListing(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	SearchListings(ctx context.Context, query ListingSearchQuery) ([]Listing, *common.Pagination, error)
	GetUserListings(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Listing, *common.Pagination, error)
	AdminUpdateListingStatus(ctx context.Context, id uuid.UUID, status ListingStatus, adminNotes *string) (*Listing, error)
	MarkListingsSwapped(ctx context.Context, ids []uuid.UUID) error
}

// ServiceImplementation implements the listing Service.
type ServiceImplementation struct {
	repo                Repository
	userService         shared.Service
	notificationService notification.Service
	esClient            *platformES.ESClientWrapper
	cfg                 *config.Config
	logger              *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new listing service.
func NewService(
	repo Repository,
	userService shared.Service,
	notificationService notification.Service,
	esClient *platformES.ESClientWrapper,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:                repo,
		userService:         userService,
		notificationService: notificationService,
		esClient:            esClient,
		cfg:                 cfg,
		logger:              logger.Named("listing-service"),
	}
}

// CreateListing creates a listing for the user. Tokenized listings
// require a verified account and start in pending approval.
func (s *ServiceImplementation) CreateListing(ctx context.Context, userID uuid.UUID, req CreateListingRequest) (*Listing, error) {
	listingType := ListingType(req.ListingType)

	status := StatusActive
	if listingType == TypeTokenized {
		owner, err := s.userService.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !owner.IsVerified {
			return nil, common.ErrForbidden.WithDetails("Tokenized listings require a verified account.")
		}
		if req.TokenReference == nil || *req.TokenReference == "" {
			return nil, common.NewValidationAPIError(map[string]string{
				"token_reference": "The token_reference field is required for tokenized listings.",
			})
		}
		status = StatusPendingApproval
	} else if req.TokenReference != nil {
		return nil, common.NewValidationAPIError(map[string]string{
			"token_reference": "The token_reference field is only allowed for tokenized listings.",
		})
	}

	newListing := &Listing{
		UserID:         userID,
		Title:          strings.TrimSpace(req.Title),
		Slug:           s.generateSlug(req.Title),
		Description:    req.Description,
		ListingType:    listingType,
		EstimatedValue: req.EstimatedValue,
		TokenReference: req.TokenReference,
		Tags:           req.Tags,
		Status:         status,
	}

	if err := s.repo.Create(ctx, newListing); err != nil {
		s.logger.Error("Failed to create listing", zap.Error(err), zap.String("userID", userID.String()))
		return nil, err
	}

	s.logger.Info("Listing created",
		zap.String("listingID", newListing.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("type", string(listingType)),
		zap.String("status", string(status)))

	if status == StatusPendingApproval {
		if err := s.notificationService.Notify(ctx, userID,
			"Listing pending approval",
			fmt.Sprintf("Your tokenized listing %q is awaiting admin approval.", newListing.Title),
			notification.ListingPending, &newListing.ID); err != nil {
			s.logger.Warn("Failed to send listing notification", zap.Error(err))
		}
	}

	s.indexListing(ctx, newListing)
	return newListing, nil
}

// generateSlug builds a unique slug from the title plus a short random
// suffix, so identical titles never collide.
func (s *ServiceImplementation) generateSlug(title string) string {
	base := slug.Make(title)
	if len(base) > 80 {
		base = base[:80]
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return base + "-" + suffix
}

// GetListingByID retrieves a listing, hiding non-active listings from
// everyone except their owner and admins.
func (s *ServiceImplementation) GetListingByID(ctx context.Context, id uuid.UUID, authenticatedUserID *uuid.UUID, role string) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(l, authenticatedUserID, role); err != nil {
		return nil, err
	}
	return l, nil
}

// GetListingBySlug retrieves a listing by slug with the same visibility
// rules as GetListingByID.
func (s *ServiceImplementation) GetListingBySlug(ctx context.Context, slugStr string, authenticatedUserID *uuid.UUID, role string) (*Listing, error) {
	l, err := s.repo.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(l, authenticatedUserID, role); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ServiceImplementation) checkVisibility(l *Listing, authenticatedUserID *uuid.UUID, role string) error {
	if l.Status == StatusActive || l.Status == StatusSwapped {
		return nil
	}
	if common.CanModerate(role) {
		return nil
	}
	if authenticatedUserID != nil && *authenticatedUserID == l.UserID {
		return nil
	}
	return common.ErrNotFound.WithDetails("Listing not found.")
}

// UpdateListing modifies a listing owned by userID.
func (s *ServiceImplementation) UpdateListing(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateListingRequest) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, common.ErrForbidden.WithDetails("You can only update your own listings.")
	}
	if l.Status == StatusSwapped {
		return nil, common.ErrConflict.WithDetails("Swapped listings can no longer be edited.")
	}

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
		l.Slug = s.generateSlug(l.Title)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.EstimatedValue != nil {
		l.EstimatedValue = req.EstimatedValue
	}
	if req.Tags != nil {
		l.Tags = req.Tags
	}

	if err := s.repo.Update(ctx, l); err != nil {
		s.logger.Error("Failed to update listing", zap.Error(err), zap.String("listingID", id.String()))
		return nil, err
	}

	s.indexListing(ctx, l)
	return l, nil
}

// DeleteListing removes a listing owned by userID.
func (s *ServiceImplementation) DeleteListing(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("Listing deleted", zap.String("listingID", id.String()), zap.String("userID", userID.String()))
	s.removeListingFromIndex(ctx, id)
	return nil
}

// SearchListings retrieves listings matching the filters.
func (s *ServiceImplementation) SearchListings(ctx context.Context, query ListingSearchQuery) ([]Listing, *common.Pagination, error) {
	// Public search only ever sees active inventory; callers filtering
	// their own listings go through GetUserListings.
	if query.Status == nil {
		active := StatusActive
		query.Status = &active
	}
	listings, pagination, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("Listing search failed", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not search listings.")
	}
	return listings, pagination, nil
}

// GetUserListings retrieves all of the user's own listings regardless of
// status.
func (s *ServiceImplementation) GetUserListings(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Listing, *common.Pagination, error) {
	query := ListingSearchQuery{
		UserID:   &userID,
		Page:     page,
		PageSize: pageSize,
	}
	listings, pagination, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("Fetching user listings failed", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve listings.")
	}
	return listings, pagination, nil
}

// AdminUpdateListingStatus sets a listing's status on behalf of an admin
// and notifies the owner.
func (s *ServiceImplementation) AdminUpdateListingStatus(ctx context.Context, id uuid.UUID, status ListingStatus, adminNotes *string) (*Listing, error) {
	if err := s.repo.UpdateStatus(ctx, id, status, adminNotes); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin updated listing status",
		zap.String("listingID", id.String()),
		zap.String("status", string(status)))

	title := "Listing status updated"
	message := fmt.Sprintf("Your listing %q is now %s.", l.Title, status)
	if err := s.notificationService.Notify(ctx, l.UserID, title, message, notification.ListingStatusChanged, &l.ID); err != nil {
		s.logger.Warn("Failed to send listing status notification", zap.Error(err))
	}

	s.indexListing(ctx, l)
	return l, nil
}

// MarkListingsSwapped moves the given listings to swapped status. Used
// by swap completion; errors are surfaced for the caller to log.
func (s *ServiceImplementation) MarkListingsSwapped(ctx context.Context, ids []uuid.UUID) error {
	count, err := s.repo.MarkSwapped(ctx, ids)
	if err != nil {
		return err
	}
	s.logger.Info("Listings marked swapped", zap.Int64("count", count))
	if s.esClient.Enabled() {
		for _, id := range ids {
			if l, findErr := s.repo.FindByID(ctx, id, false); findErr == nil {
				s.indexListing(ctx, l)
			}
		}
	}
	return nil
}

// --- Elasticsearch mirroring (best-effort) ---

func (s *ServiceImplementation) indexListing(ctx context.Context, l *Listing) {
	if !s.esClient.Enabled() {
		return
	}
	docJSON, err := l.ElasticsearchDoc()
	if err != nil {
		s.logger.Warn("Failed to build search document", zap.Error(err), zap.String("listingID", l.ID.String()))
		return
	}
	req := esapi.IndexRequest{
		Index:      platformES.ListingsIndexName,
		DocumentID: l.ID.String(),
		Body:       strings.NewReader(docJSON),
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Warn("Failed to index listing in Elasticsearch", zap.Error(err), zap.String("listingID", l.ID.String()))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Warn("Elasticsearch rejected listing document",
			zap.String("listingID", l.ID.String()),
			zap.String("status", res.Status()))
	}
}

func (s *ServiceImplementation) removeListingFromIndex(ctx context.Context, id uuid.UUID) {
	if !s.esClient.Enabled() {
		return
	}
	req := esapi.DeleteRequest{
		Index:      platformES.ListingsIndexName,
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Warn("Failed to delete listing from Elasticsearch", zap.Error(err), zap.String("listingID", id.String()))
		return
	}
	defer res.Body.Close()
}
