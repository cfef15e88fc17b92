// File: internal/swap/service.go
package swap

import (
	"context"
	"fmt"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/listing"
	"albash_solutions_backend/internal/notification"
	"albash_solutions_backend/internal/platform/crypto"
	"albash_solutions_backend/internal/reputation"
	"albash_solutions_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the swap negotiation and contract lifecycle.
type Service interface {
	ProposeSwap(ctx context.Context, initiatorID uuid.UUID, req ProposeSwapRequest) (*SwapRequest, error)
	RespondToSwap(ctx context.Context, actorID, swapID uuid.UUID, decision string) (*SwapRequest, error)
	CancelSwap(ctx context.Context, actorID, swapID uuid.UUID) (*SwapRequest, error)
	CompleteSwap(ctx context.Context, actorID, swapID uuid.UUID) (*SwapRequest, error)
	DisputeSwap(ctx context.Context, actorID, swapID uuid.UUID) (*SwapRequest, error)
	GetSwap(ctx context.Context, actorID uuid.UUID, role string, swapID uuid.UUID) (*SwapRequest, error)
	ListSwaps(ctx context.Context, userID uuid.UUID, query SwapListQuery) ([]SwapRequest, *common.Pagination, error)

	CreateCounterOffer(ctx context.Context, actorID, swapID uuid.UUID, req CreateCounterOfferRequest) (*SwapCounterOffer, error)
	AcceptCounterOffer(ctx context.Context, actorID, counterID uuid.UUID) (*SwapCounterOffer, error)
	RejectCounterOffer(ctx context.Context, actorID, counterID uuid.UUID) (*SwapCounterOffer, error)
	ListCounterOffers(ctx context.Context, actorID uuid.UUID, role string, swapID uuid.UUID) ([]SwapCounterOffer, error)

	SignContract(ctx context.Context, actorID, swapID uuid.UUID, req SignContractRequest) (*SwapContract, error)
	GetContract(ctx context.Context, actorID uuid.UUID, role string, swapID uuid.UUID) (*SwapContract, error)
}

// ServiceImplementation implements the swap Service.
type ServiceImplementation struct {
	repo                Repository
	listingService      listing.Service
	userService         shared.Service
	notificationService notification.Service
	reputationService   reputation.Service
	cfg                 *config.Config
	logger              *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new swap service.
func NewService(
	repo Repository,
	listingService listing.Service,
	userService shared.Service,
	notificationService notification.Service,
	reputationService reputation.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:                repo,
		listingService:      listingService,
		userService:         userService,
		notificationService: notificationService,
		reputationService:   reputationService,
		cfg:                 cfg,
		logger:              logger.Named("swap-service"),
	}
}

// ProposeSwap creates a new swap request in pending status. The listings
// on either side, when given, must belong to the respective party and be
// active. Only one pending request per (initiator, target, target
// listing) triple is allowed at a time.
func (s *ServiceImplementation) ProposeSwap(ctx context.Context, initiatorID uuid.UUID, req ProposeSwapRequest) (*SwapRequest, error) {
	targetUserID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		return nil, common.NewValidationAPIError(map[string]string{"target_user_id": "Must be a valid UUID."})
	}
	if targetUserID == initiatorID {
		return nil, common.NewValidationAPIError(map[string]string{"target_user_id": "You cannot propose a swap to yourself."})
	}

	if _, err := s.userService.GetUserByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	var offeringListingID *uuid.UUID
	if req.OfferingListingID != nil {
		id, parseErr := uuid.Parse(*req.OfferingListingID)
		if parseErr != nil {
			return nil, common.NewValidationAPIError(map[string]string{"offering_listing_id": "Must be a valid UUID."})
		}
		offered, findErr := s.listingService.GetListingByID(ctx, id, &initiatorID, common.RoleUser)
		if findErr != nil {
			return nil, findErr
		}
		if offered.UserID != initiatorID {
			return nil, common.NewValidationAPIError(map[string]string{"offering_listing_id": "The offered listing must belong to you."})
		}
		if offered.Status != listing.StatusActive {
			return nil, common.ErrConflict.WithDetails("The offered listing is not active.")
		}
		offeringListingID = &id
	}

	var targetListingID *uuid.UUID
	if req.TargetListingID != nil {
		id, parseErr := uuid.Parse(*req.TargetListingID)
		if parseErr != nil {
			return nil, common.NewValidationAPIError(map[string]string{"target_listing_id": "Must be a valid UUID."})
		}
		wanted, findErr := s.listingService.GetListingByID(ctx, id, &initiatorID, common.RoleUser)
		if findErr != nil {
			return nil, findErr
		}
		if wanted.UserID != targetUserID {
			return nil, common.NewValidationAPIError(map[string]string{"target_listing_id": "The requested listing must belong to the target user."})
		}
		if wanted.Status != listing.StatusActive {
			return nil, common.ErrConflict.WithDetails("The requested listing is not active.")
		}
		targetListingID = &id
	}

	exists, err := s.repo.HasPendingSwap(ctx, initiatorID, targetUserID, targetListingID)
	if err != nil {
		s.logger.Error("Failed to check for duplicate pending swap", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create swap request.")
	}
	if exists {
		return nil, common.ErrConflict.WithDetails("You already have a pending swap request with this user for this listing.")
	}

	swapReq := &SwapRequest{
		InitiatorID:       initiatorID,
		TargetUserID:      targetUserID,
		OfferingListingID: offeringListingID,
		TargetListingID:   targetListingID,
		Status:            SwapStatusPending,
		Terms:             req.Terms,
	}
	if err := s.repo.CreateSwap(ctx, swapReq); err != nil {
		s.logger.Error("Failed to create swap request", zap.Error(err), zap.String("initiatorID", initiatorID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create swap request.")
	}

	s.logger.Info("Swap request proposed",
		zap.String("swapID", swapReq.ID.String()),
		zap.String("initiatorID", initiatorID.String()),
		zap.String("targetUserID", targetUserID.String()))

	s.notify(ctx, targetUserID, "New swap proposal",
		"You have received a new swap proposal.", notification.SwapProposed, &swapReq.ID)

	return swapReq, nil
}

// RespondToSwap accepts or rejects a pending swap. Either participant
// may respond. The transition is a conditional update: if the swap has
// already left pending, the response fails with a conflict.
func (s *ServiceImplementation) RespondToSwap(ctx context.Context, actorID, swapID uuid.UUID, decision string) (*SwapRequest, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) {
		return nil, common.ErrForbidden.WithDetails("Only swap participants may respond.")
	}

	var to SwapStatus
	var notifType notification.NotificationType
	var title, message string
	switch decision {
	case "accept":
		to = SwapStatusAccepted
		notifType = notification.SwapAccepted
		title = "Swap accepted"
		message = "Your swap request was accepted. You can now sign the contract."
	case "reject":
		to = SwapStatusRejected
		notifType = notification.SwapRejected
		title = "Swap rejected"
		message = "Your swap request was rejected."
	default:
		return nil, common.NewValidationAPIError(map[string]string{"decision": "Must be 'accept' or 'reject'."})
	}

	ok, err := s.repo.TransitionSwapStatus(ctx, swapID, []SwapStatus{SwapStatusPending}, to)
	if err != nil {
		s.logger.Error("Failed to respond to swap", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not update swap request.")
	}
	if !ok {
		return nil, common.ErrConflict.WithDetails("Swap request is no longer pending.")
	}

	swapReq.Status = to
	s.logger.Info("Swap responded",
		zap.String("swapID", swapID.String()),
		zap.String("actorID", actorID.String()),
		zap.String("decision", decision))

	s.notify(ctx, swapReq.Counterparty(actorID), title, message, notifType, &swapReq.ID)
	return swapReq, nil
}

// CancelSwap moves any non-terminal swap to cancelled.
func (s *ServiceImplementation) CancelSwap(ctx context.Context, actorID, swapID uuid.UUID) (*SwapRequest, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) {
		return nil, common.ErrForbidden.WithDetails("Only swap participants may cancel.")
	}

	ok, err := s.repo.TransitionSwapStatus(ctx, swapID,
		[]SwapStatus{SwapStatusPending, SwapStatusAccepted, SwapStatusDisputed}, SwapStatusCancelled)
	if err != nil {
		s.logger.Error("Failed to cancel swap", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not cancel swap request.")
	}
	if !ok {
		return nil, common.ErrConflict.WithDetails("Swap request is already in a terminal state.")
	}

	swapReq.Status = SwapStatusCancelled
	s.notify(ctx, swapReq.Counterparty(actorID), "Swap cancelled",
		"A swap request you were part of has been cancelled.", notification.SwapCancelled, &swapReq.ID)
	return swapReq, nil
}

// CompleteSwap moves an accepted swap to completed. Completion requires
// a fully executed contract: the swap must already carry its contract
// hash. On success both listings are marked swapped and both parties
// receive a reputation credit; those side effects are best-effort.
func (s *ServiceImplementation) CompleteSwap(ctx context.Context, actorID, swapID uuid.UUID) (*SwapRequest, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) {
		return nil, common.ErrForbidden.WithDetails("Only swap participants may complete a swap.")
	}
	if swapReq.ContractHash == nil {
		return nil, common.ErrConflict.WithDetails("The swap contract must be signed by both parties before completion.")
	}

	ok, err := s.repo.TransitionSwapStatus(ctx, swapID, []SwapStatus{SwapStatusAccepted}, SwapStatusCompleted)
	if err != nil {
		s.logger.Error("Failed to complete swap", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not complete swap request.")
	}
	if !ok {
		return nil, common.ErrConflict.WithDetails("Only accepted swap requests can be completed.")
	}

	swapReq.Status = SwapStatusCompleted
	s.logger.Info("Swap completed", zap.String("swapID", swapID.String()), zap.String("actorID", actorID.String()))

	var listingIDs []uuid.UUID
	if swapReq.OfferingListingID != nil {
		listingIDs = append(listingIDs, *swapReq.OfferingListingID)
	}
	if swapReq.TargetListingID != nil {
		listingIDs = append(listingIDs, *swapReq.TargetListingID)
	}
	if len(listingIDs) > 0 {
		if err := s.listingService.MarkListingsSwapped(ctx, listingIDs); err != nil {
			s.logger.Warn("Failed to mark listings swapped after completion",
				zap.Error(err), zap.String("swapID", swapID.String()))
		}
	}

	points := s.cfg.SwapCompletionReputationPoints
	if points > 0 {
		for _, partyID := range []uuid.UUID{swapReq.InitiatorID, swapReq.TargetUserID} {
			if _, err := s.reputationService.AdjustScore(ctx, partyID, points, reputation.ReasonSwapCompleted); err != nil {
				s.logger.Warn("Failed to credit reputation after swap completion",
					zap.Error(err), zap.String("userID", partyID.String()))
			}
		}
	}

	s.notify(ctx, swapReq.Counterparty(actorID), "Swap completed",
		"Your swap has been marked as completed.", notification.SwapCompleted, &swapReq.ID)
	return swapReq, nil
}

// DisputeSwap moves an accepted swap to disputed.
func (s *ServiceImplementation) DisputeSwap(ctx context.Context, actorID, swapID uuid.UUID) (*SwapRequest, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) {
		return nil, common.ErrForbidden.WithDetails("Only swap participants may open a dispute.")
	}

	ok, err := s.repo.TransitionSwapStatus(ctx, swapID, []SwapStatus{SwapStatusAccepted}, SwapStatusDisputed)
	if err != nil {
		s.logger.Error("Failed to dispute swap", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not open dispute.")
	}
	if !ok {
		return nil, common.ErrConflict.WithDetails("Only accepted swap requests can be disputed.")
	}

	swapReq.Status = SwapStatusDisputed
	s.logger.Warn("Swap disputed", zap.String("swapID", swapID.String()), zap.String("actorID", actorID.String()))

	s.notify(ctx, swapReq.Counterparty(actorID), "Swap disputed",
		"A dispute has been opened on your swap.", notification.SwapDisputed, &swapReq.ID)
	return swapReq, nil
}

// GetSwap retrieves a swap visible to its participants and admins.
func (s *ServiceImplementation) GetSwap(ctx context.Context, actorID uuid.UUID, role string, swapID uuid.UUID) (*SwapRequest, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, true)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) && !common.CanModerate(role) {
		return nil, common.ErrForbidden.WithDetails("You are not a participant in this swap.")
	}
	return swapReq, nil
}

// ListSwaps retrieves the swaps the user participates in, either side.
func (s *ServiceImplementation) ListSwaps(ctx context.Context, userID uuid.UUID, query SwapListQuery) ([]SwapRequest, *common.Pagination, error) {
	swaps, pagination, err := s.repo.ListSwapsForUser(ctx, userID, query)
	if err != nil {
		s.logger.Error("Failed to list swaps", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve swap requests.")
	}
	return swaps, pagination, nil
}

// CreateCounterOffer records an amended set of terms against a pending
// swap. Only the receiving party negotiates back: the initiator gets a
// forbidden error. The original initiator is notified with the new
// counter-offer as reference.
func (s *ServiceImplementation) CreateCounterOffer(ctx context.Context, actorID, swapID uuid.UUID, req CreateCounterOfferRequest) (*SwapCounterOffer, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if actorID != swapReq.TargetUserID {
		return nil, common.ErrForbidden.WithDetails("Only the receiving party may create a counter-offer.")
	}
	if swapReq.Status != SwapStatusPending {
		return nil, common.ErrConflict.WithDetails("Counter-offers can only be made against pending swap requests.")
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return nil, common.NewValidationAPIError(map[string]string{"expires_at": "Expiry must be in the future."})
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil && s.cfg.CounterOfferExpiryHours > 0 {
		t := time.Now().Add(time.Duration(s.cfg.CounterOfferExpiryHours) * time.Hour)
		expiresAt = &t
	}

	counter := &SwapCounterOffer{
		SwapRequestID:      swapID,
		CounterInitiatorID: actorID,
		CounterTerms:       req.CounterTerms,
		Status:             CounterStatusPending,
		ExpiresAt:          expiresAt,
	}
	if err := s.repo.CreateCounterOffer(ctx, counter); err != nil {
		s.logger.Error("Failed to create counter-offer", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create counter-offer.")
	}

	s.logger.Info("Counter-offer created",
		zap.String("counterID", counter.ID.String()),
		zap.String("swapID", swapID.String()))

	s.notify(ctx, swapReq.InitiatorID, "Counter-offer received",
		"The other party proposed different terms for your swap.", notification.SwapCounterOffer, &counter.ID)
	return counter, nil
}

// AcceptCounterOffer lets the original initiator adopt the countered
// terms. The parent swap takes over the counter terms and advances to
// accepted in the same transaction; sibling pending counters expire.
func (s *ServiceImplementation) AcceptCounterOffer(ctx context.Context, actorID, counterID uuid.UUID) (*SwapCounterOffer, error) {
	counter, err := s.repo.FindCounterOfferByID(ctx, counterID, true)
	if err != nil {
		return nil, err
	}
	if counter.SwapRequest == nil {
		return nil, common.ErrInternalServer.WithDetails("Counter-offer is missing its swap request.")
	}
	if actorID != counter.SwapRequest.InitiatorID {
		return nil, common.ErrForbidden.WithDetails("Only the original initiator may accept a counter-offer.")
	}
	if counter.Status != CounterStatusPending {
		return nil, common.ErrConflict.WithDetails("Counter-offer is no longer pending.")
	}
	if counter.IsExpired(time.Now()) {
		// Lazily sweep the row; the cron job would catch it eventually.
		if _, err := s.repo.TransitionCounterOfferStatus(ctx, counterID, CounterStatusPending, CounterStatusExpired); err != nil {
			s.logger.Warn("Failed to expire counter-offer lazily", zap.Error(err), zap.String("counterID", counterID.String()))
		}
		return nil, common.ErrConflict.WithDetails("Counter-offer has expired.")
	}

	if err := s.repo.AcceptCounterOffer(ctx, counter); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return nil, err
		}
		s.logger.Error("Failed to accept counter-offer", zap.Error(err), zap.String("counterID", counterID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not accept counter-offer.")
	}

	counter.Status = CounterStatusAccepted
	s.logger.Info("Counter-offer accepted",
		zap.String("counterID", counterID.String()),
		zap.String("swapID", counter.SwapRequestID.String()))

	s.notify(ctx, counter.CounterInitiatorID, "Counter-offer accepted",
		"Your counter-offer was accepted. The swap now uses your terms.", notification.SwapCounterAccepted, &counter.ID)
	return counter, nil
}

// RejectCounterOffer lets the original initiator decline a counter.
func (s *ServiceImplementation) RejectCounterOffer(ctx context.Context, actorID, counterID uuid.UUID) (*SwapCounterOffer, error) {
	counter, err := s.repo.FindCounterOfferByID(ctx, counterID, true)
	if err != nil {
		return nil, err
	}
	if counter.SwapRequest == nil {
		return nil, common.ErrInternalServer.WithDetails("Counter-offer is missing its swap request.")
	}
	if actorID != counter.SwapRequest.InitiatorID {
		return nil, common.ErrForbidden.WithDetails("Only the original initiator may reject a counter-offer.")
	}

	ok, err := s.repo.TransitionCounterOfferStatus(ctx, counterID, CounterStatusPending, CounterStatusRejected)
	if err != nil {
		s.logger.Error("Failed to reject counter-offer", zap.Error(err), zap.String("counterID", counterID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not reject counter-offer.")
	}
	if !ok {
		return nil, common.ErrConflict.WithDetails("Counter-offer is no longer pending.")
	}

	counter.Status = CounterStatusRejected
	s.notify(ctx, counter.CounterInitiatorID, "Counter-offer rejected",
		"Your counter-offer was rejected.", notification.SwapCounterRejected, &counter.ID)
	return counter, nil
}

// ListCounterOffers retrieves the counters on a swap for a participant
// or admin.
func (s *ServiceImplementation) ListCounterOffers(ctx context.Context, actorID uuid.UUID, role string, swapID uuid.UUID) ([]SwapCounterOffer, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) && !common.CanModerate(role) {
		return nil, common.ErrForbidden.WithDetails("You are not a participant in this swap.")
	}
	counters, err := s.repo.ListCounterOffers(ctx, swapID)
	if err != nil {
		s.logger.Error("Failed to list counter-offers", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve counter-offers.")
	}
	return counters, nil
}

// SignContract records the actor's signature on the swap's contract,
// creating the contract row on first signature. Re-signing by the same
// actor refreshes only that actor's slot. Once both parties have signed
// the contract is immutable, and the resulting hash is written onto the
// parent swap (best-effort) when the swap is accepted.
func (s *ServiceImplementation) SignContract(ctx context.Context, actorID, swapID uuid.UUID, req SignContractRequest) (*SwapContract, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) {
		return nil, common.ErrForbidden.WithDetails("Only swap participants may sign the contract.")
	}

	contract, err := s.repo.FindContractBySwapID(ctx, swapID)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); !ok || apiErr.Code != common.ErrNotFound.Code {
			s.logger.Error("Failed to load contract", zap.Error(err), zap.String("swapID", swapID.String()))
			return nil, common.ErrInternalServer.WithDetails("Could not load contract.")
		}
		contract = &SwapContract{
			SwapRequestID: swapID,
			ContractTerms: swapReq.Terms,
		}
	}
	if contract.IsFullyExecuted() {
		return nil, common.ErrConflict.WithDetails("Contract is fully executed and can no longer be changed.")
	}

	if req.ContractTerms != nil {
		contract.ContractTerms = req.ContractTerms
	}

	signature := req.Signature
	if signature == nil || *signature == "" {
		token, genErr := crypto.GenerateSecureRandomString(32)
		if genErr != nil {
			s.logger.Error("Failed to generate signature token", zap.Error(genErr))
			return nil, common.ErrInternalServer.WithDetails("Could not generate signature.")
		}
		signature = &token
	}

	now := time.Now()
	party := ContractPartyTarget
	if actorID == swapReq.InitiatorID {
		party = ContractPartyInitiator
		contract.DigitalSignatureInitiator = signature
		contract.SignedAtInitiator = &now
	} else {
		contract.DigitalSignatureTarget = signature
		contract.SignedAtTarget = &now
	}

	hash, err := ComputeContractHash(contract.ContractTerms)
	if err != nil {
		s.logger.Error("Failed to hash contract terms", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not compute contract hash.")
	}
	contract.ContractHash = hash

	if err := s.repo.UpsertContract(ctx, contract, party); err != nil {
		s.logger.Error("Failed to save contract", zap.Error(err), zap.String("swapID", swapID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not save contract.")
	}

	s.logger.Info("Contract signed",
		zap.String("swapID", swapID.String()),
		zap.String("actorID", actorID.String()),
		zap.Bool("fullyExecuted", contract.IsFullyExecuted()))

	// The signature is recorded at this point; everything below is
	// best-effort per the propagation policy.
	if contract.IsFullyExecuted() && swapReq.Status == SwapStatusAccepted {
		if _, err := s.repo.SetSwapContractHash(ctx, swapID, hash); err != nil {
			s.logger.Warn("Failed to write contract hash onto swap",
				zap.Error(err), zap.String("swapID", swapID.String()))
		}
	}

	s.notify(ctx, swapReq.Counterparty(actorID), "Contract signed",
		fmt.Sprintf("The other party signed the swap contract (%s).", shortHash(hash)),
		notification.SwapContractSigned, &swapReq.ID)

	return contract, nil
}

// GetContract retrieves the contract for a swap, participants and
// admins only.
func (s *ServiceImplementation) GetContract(ctx context.Context, actorID uuid.UUID, role string, swapID uuid.UUID) (*SwapContract, error) {
	swapReq, err := s.repo.FindSwapByID(ctx, swapID, false)
	if err != nil {
		return nil, err
	}
	if !swapReq.IsParticipant(actorID) && !common.CanModerate(role) {
		return nil, common.ErrForbidden.WithDetails("You are not a participant in this swap.")
	}
	return s.repo.FindContractBySwapID(ctx, swapID)
}

// notify emits a notification and logs on failure; emission never fails
// the calling operation.
func (s *ServiceImplementation) notify(ctx context.Context, userID uuid.UUID, title, message string, notifType notification.NotificationType, referenceID *uuid.UUID) {
	if err := s.notificationService.Notify(ctx, userID, title, message, notifType, referenceID); err != nil {
		s.logger.Warn("Failed to emit swap notification",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("type", string(notifType)))
	}
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
