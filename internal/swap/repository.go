// File: internal/swap/repository.go
package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for swap data operations. Status
// transitions are expressed as conditional updates so that the database
// row is the single point of serialization: a transition whose
// precondition no longer holds affects zero rows and surfaces as a
// conflict, never as a lost update.
type Repository interface {
	CreateSwap(ctx context.Context, swap *SwapRequest) error
	FindSwapByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*SwapRequest, error)
	ListSwapsForUser(ctx context.Context, userID uuid.UUID, query SwapListQuery) ([]SwapRequest, *common.Pagination, error)
	HasPendingSwap(ctx context.Context, initiatorID, targetUserID uuid.UUID, targetListingID *uuid.UUID) (bool, error)
	TransitionSwapStatus(ctx context.Context, id uuid.UUID, from []SwapStatus, to SwapStatus) (bool, error)
	SetSwapContractHash(ctx context.Context, id uuid.UUID, hash string) (bool, error)

	CreateCounterOffer(ctx context.Context, counter *SwapCounterOffer) error
	FindCounterOfferByID(ctx context.Context, id uuid.UUID, preloadParent bool) (*SwapCounterOffer, error)
	ListCounterOffers(ctx context.Context, swapRequestID uuid.UUID) ([]SwapCounterOffer, error)
	TransitionCounterOfferStatus(ctx context.Context, id uuid.UUID, from, to CounterOfferStatus) (bool, error)
	AcceptCounterOffer(ctx context.Context, counter *SwapCounterOffer) error
	ExpireCounterOffers(ctx context.Context, now time.Time) (int64, error)

	UpsertContract(ctx context.Context, contract *SwapContract, party ContractParty) error
	FindContractBySwapID(ctx context.Context, swapRequestID uuid.UUID) (*SwapContract, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM swap repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// --- Swap requests ---

func (r *gormRepository) CreateSwap(ctx context.Context, swap *SwapRequest) error {
	if err := r.db.WithContext(ctx).Create(swap).Error; err != nil {
		return fmt.Errorf("failed to create swap request: %w", err)
	}
	return nil
}

func (r *gormRepository) FindSwapByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*SwapRequest, error) {
	var swap SwapRequest
	query := r.db.WithContext(ctx)
	if preloadAssociations {
		query = query.Preload("Initiator").
			Preload("Target").
			Preload("OfferingListing").
			Preload("TargetListing")
	}
	err := query.First(&swap, "swap_requests.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Swap request not found.")
		}
		return nil, err
	}
	return &swap, nil
}

// ListSwapsForUser retrieves swaps where the user is either party,
// newest first.
func (r *gormRepository) ListSwapsForUser(ctx context.Context, userID uuid.UUID, query SwapListQuery) ([]SwapRequest, *common.Pagination, error) {
	var swaps []SwapRequest
	var total int64

	dbQuery := r.db.WithContext(ctx).Model(&SwapRequest{}).
		Where("initiator_id = ? OR target_user_id = ?", userID, userID)
	if query.Status != nil {
		dbQuery = dbQuery.Where("status = ?", *query.Status)
	}

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting swaps for user %s failed: %w", userID, err)
	}

	pagination := common.NewPagination(total, query.Page, query.PageSize)

	offset := (query.Page - 1) * query.PageSize
	if query.Page <= 0 {
		offset = 0
	}

	err := dbQuery.Preload("OfferingListing").
		Preload("TargetListing").
		Order("created_at DESC").
		Limit(query.PageSize).
		Offset(offset).
		Find(&swaps).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching swaps for user %s failed: %w", userID, err)
	}
	return swaps, pagination, nil
}

// HasPendingSwap reports whether a pending swap already exists for the
// same initiator, target and (optionally) target listing.
func (r *gormRepository) HasPendingSwap(ctx context.Context, initiatorID, targetUserID uuid.UUID, targetListingID *uuid.UUID) (bool, error) {
	var count int64
	dbQuery := r.db.WithContext(ctx).Model(&SwapRequest{}).
		Where("initiator_id = ? AND target_user_id = ? AND status = ?", initiatorID, targetUserID, SwapStatusPending)
	if targetListingID != nil {
		dbQuery = dbQuery.Where("target_listing_id = ?", *targetListingID)
	} else {
		dbQuery = dbQuery.Where("target_listing_id IS NULL")
	}
	if err := dbQuery.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking for pending swap failed: %w", err)
	}
	return count > 0, nil
}

// TransitionSwapStatus moves the swap to the new status only if its
// current status is one of the allowed source states. Returns false when
// zero rows matched, i.e. the precondition failed.
func (r *gormRepository) TransitionSwapStatus(ctx context.Context, id uuid.UUID, from []SwapStatus, to SwapStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&SwapRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition swap %s to %s: %w", id, to, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetSwapContractHash writes the contract hash onto the swap row. The
// hash is write-once: a row that already carries one is left untouched.
func (r *gormRepository) SetSwapContractHash(ctx context.Context, id uuid.UUID, hash string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&SwapRequest{}).
		Where("id = ? AND contract_hash IS NULL", id).
		Update("contract_hash", hash)
	if result.Error != nil {
		return false, fmt.Errorf("failed to set contract hash on swap %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// --- Counter-offers ---

func (r *gormRepository) CreateCounterOffer(ctx context.Context, counter *SwapCounterOffer) error {
	if err := r.db.WithContext(ctx).Create(counter).Error; err != nil {
		return fmt.Errorf("failed to create counter-offer: %w", err)
	}
	return nil
}

func (r *gormRepository) FindCounterOfferByID(ctx context.Context, id uuid.UUID, preloadParent bool) (*SwapCounterOffer, error) {
	var counter SwapCounterOffer
	query := r.db.WithContext(ctx)
	if preloadParent {
		query = query.Preload("SwapRequest")
	}
	err := query.First(&counter, "swap_counter_offers.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Counter-offer not found.")
		}
		return nil, err
	}
	return &counter, nil
}

func (r *gormRepository) ListCounterOffers(ctx context.Context, swapRequestID uuid.UUID) ([]SwapCounterOffer, error) {
	var counters []SwapCounterOffer
	err := r.db.WithContext(ctx).
		Where("swap_request_id = ?", swapRequestID).
		Order("created_at DESC").
		Find(&counters).Error
	if err != nil {
		return nil, fmt.Errorf("fetching counter-offers for swap %s failed: %w", swapRequestID, err)
	}
	return counters, nil
}

// TransitionCounterOfferStatus is the conditional-update equivalent of
// TransitionSwapStatus for counter-offers.
func (r *gormRepository) TransitionCounterOfferStatus(ctx context.Context, id uuid.UUID, from, to CounterOfferStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&SwapCounterOffer{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition counter-offer %s to %s: %w", id, to, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AcceptCounterOffer performs the acceptance as one transaction: the
// counter moves to accepted, the parent swap adopts the counter terms
// and advances to accepted, and sibling pending counters expire. The
// parent transition is conditional on it still being pending, so a
// concurrent Respond or Cancel aborts the whole acceptance.
func (r *gormRepository) AcceptCounterOffer(ctx context.Context, counter *SwapCounterOffer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&SwapCounterOffer{}).
			Where("id = ? AND status = ?", counter.ID, CounterStatusPending).
			Update("status", CounterStatusAccepted)
		if result.Error != nil {
			return fmt.Errorf("failed to accept counter-offer %s: %w", counter.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrConflict.WithDetails("Counter-offer is no longer pending.")
		}

		result = tx.Model(&SwapRequest{}).
			Where("id = ? AND status = ?", counter.SwapRequestID, SwapStatusPending).
			Updates(map[string]interface{}{
				"terms":  counter.CounterTerms,
				"status": SwapStatusAccepted,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to apply counter terms to swap %s: %w", counter.SwapRequestID, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrConflict.WithDetails("Swap request is no longer pending.")
		}

		if err := tx.Model(&SwapCounterOffer{}).
			Where("swap_request_id = ? AND id <> ? AND status = ?", counter.SwapRequestID, counter.ID, CounterStatusPending).
			Update("status", CounterStatusExpired).Error; err != nil {
			return fmt.Errorf("failed to expire sibling counter-offers for swap %s: %w", counter.SwapRequestID, err)
		}
		return nil
	})
}

// ExpireCounterOffers moves all pending counters past their expiry time
// to expired. Used by the housekeeping sweep.
func (r *gormRepository) ExpireCounterOffers(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&SwapCounterOffer{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", CounterStatusPending, now).
		Update("status", CounterStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire counter-offers: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Contracts ---

// UpsertContract creates the contract row on first signature or updates
// it in place on later ones, keyed by swap_request_id. The conflict
// assignment list only covers the signing party's slot, so two parties
// whose first signatures race cannot erase each other's signature.
func (r *gormRepository) UpsertContract(ctx context.Context, contract *SwapContract, party ContractParty) error {
	columns := []string{"contract_terms", "contract_hash", "updated_at"}
	switch party {
	case ContractPartyInitiator:
		columns = append(columns, "digital_signature_initiator", "signed_at_initiator")
	case ContractPartyTarget:
		columns = append(columns, "digital_signature_target", "signed_at_target")
	default:
		return fmt.Errorf("unknown contract party %q for swap %s", party, contract.SwapRequestID)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "swap_request_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(contract).Error
	if err != nil {
		return fmt.Errorf("failed to upsert contract for swap %s: %w", contract.SwapRequestID, err)
	}
	return nil
}

func (r *gormRepository) FindContractBySwapID(ctx context.Context, swapRequestID uuid.UUID) (*SwapContract, error) {
	var contract SwapContract
	err := r.db.WithContext(ctx).Where("swap_request_id = ?", swapRequestID).First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Contract not found for this swap.")
		}
		return nil, err
	}
	return &contract, nil
}
