// File: internal/swap/repository_test.go
package swap

import (
	"context"
	"testing"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSwapRepository opens an in-memory SQLite database, migrates the
// swap tables and returns a real repository. The conditional-update and
// transactional paths need a live database; mocks cannot cover them.
func setupSwapRepository(t *testing.T) (Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")

	// Drop in FK order so reruns against the shared cache start clean.
	err = db.Migrator().DropTable(&SwapContract{}, &SwapCounterOffer{}, &SwapRequest{}, &user.User{})
	require.NoError(t, err, "Failed to drop swap tables")

	err = db.AutoMigrate(&user.User{}, &SwapRequest{}, &SwapCounterOffer{}, &SwapContract{})
	require.NoError(t, err, "Failed to migrate database")

	t.Cleanup(func() {
		sqlDB, errDb := db.DB()
		require.NoError(t, errDb)
		sqlDB.Close()
	})

	return NewGORMRepository(db), db
}

func seedParticipants(t *testing.T, db *gorm.DB) (uuid.UUID, uuid.UUID) {
	t.Helper()

	initiator := &user.User{BaseModel: common.BaseModel{ID: uuid.New()}}
	target := &user.User{BaseModel: common.BaseModel{ID: uuid.New()}}
	require.NoError(t, db.Create(initiator).Error)
	require.NoError(t, db.Create(target).Error)
	return initiator.ID, target.ID
}

func seedSwap(t *testing.T, db *gorm.DB, initiatorID, targetID uuid.UUID, status SwapStatus) *SwapRequest {
	t.Helper()

	swap := &SwapRequest{
		BaseModel:    common.BaseModel{ID: uuid.New()},
		InitiatorID:  initiatorID,
		TargetUserID: targetID,
		Status:       status,
		Terms:        common.JSONMap{"offered": "vintage camera"},
	}
	require.NoError(t, db.Create(swap).Error)
	return swap
}

func seedCounterOffer(t *testing.T, db *gorm.DB, swapID, authorID uuid.UUID, status CounterOfferStatus, expiresAt *time.Time) *SwapCounterOffer {
	t.Helper()

	counter := &SwapCounterOffer{
		BaseModel:          common.BaseModel{ID: uuid.New()},
		SwapRequestID:      swapID,
		CounterInitiatorID: authorID,
		CounterTerms:       common.JSONMap{"offered": "vintage camera", "cash_top_up": float64(25)},
		Status:             status,
		ExpiresAt:          expiresAt,
	}
	require.NoError(t, db.Create(counter).Error)
	return counter
}

func TestRepository_CreateSwapAssignsID(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)

	swap := &SwapRequest{
		InitiatorID:  initiatorID,
		TargetUserID: targetID,
		Status:       SwapStatusPending,
	}
	require.NoError(t, repo.CreateSwap(ctx, swap))
	assert.NotEqual(t, uuid.Nil, swap.ID)

	stored, err := repo.FindSwapByID(ctx, swap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, SwapStatusPending, stored.Status)
}

func TestRepository_TransitionSwapStatus(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusPending)

	ok, err := repo.TransitionSwapStatus(ctx, swap.ID, []SwapStatus{SwapStatusPending}, SwapStatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	// The precondition no longer holds, so the same transition is a no-op.
	ok, err = repo.TransitionSwapStatus(ctx, swap.ID, []SwapStatus{SwapStatusPending}, SwapStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindSwapByID(ctx, swap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, SwapStatusAccepted, stored.Status)
}

func TestRepository_SetSwapContractHash_WriteOnce(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusAccepted)

	ok, err := repo.SetSwapContractHash(ctx, swap.ID, "aaaa1111")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetSwapContractHash(ctx, swap.ID, "bbbb2222")
	require.NoError(t, err)
	assert.False(t, ok, "A swap that already carries a hash must not be overwritten")

	stored, err := repo.FindSwapByID(ctx, swap.ID, false)
	require.NoError(t, err)
	require.NotNil(t, stored.ContractHash)
	assert.Equal(t, "aaaa1111", *stored.ContractHash)
}

func TestRepository_HasPendingSwap(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	seedSwap(t, db, initiatorID, targetID, SwapStatusPending)

	found, err := repo.HasPendingSwap(ctx, initiatorID, targetID, nil)
	require.NoError(t, err)
	assert.True(t, found)

	// A different target listing is a different deal.
	otherListingID := uuid.New()
	found, err = repo.HasPendingSwap(ctx, initiatorID, targetID, &otherListingID)
	require.NoError(t, err)
	assert.False(t, found)

	// Swapped roles do not match either.
	found, err = repo.HasPendingSwap(ctx, targetID, initiatorID, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_AcceptCounterOffer(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusPending)

	accepted := seedCounterOffer(t, db, swap.ID, targetID, CounterStatusPending, nil)
	sibling := seedCounterOffer(t, db, swap.ID, targetID, CounterStatusPending, nil)

	err := repo.AcceptCounterOffer(ctx, accepted)
	require.NoError(t, err)

	storedCounter, err := repo.FindCounterOfferByID(ctx, accepted.ID, false)
	require.NoError(t, err)
	assert.Equal(t, CounterStatusAccepted, storedCounter.Status)

	storedSibling, err := repo.FindCounterOfferByID(ctx, sibling.ID, false)
	require.NoError(t, err)
	assert.Equal(t, CounterStatusExpired, storedSibling.Status, "Sibling pending counters must expire on acceptance")

	storedSwap, err := repo.FindSwapByID(ctx, swap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, SwapStatusAccepted, storedSwap.Status)
	assert.Equal(t, accepted.CounterTerms, storedSwap.Terms, "Parent swap must adopt the counter terms")
}

func TestRepository_AcceptCounterOffer_ParentNoLongerPendingRollsBack(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusCancelled)
	counter := seedCounterOffer(t, db, swap.ID, targetID, CounterStatusPending, nil)

	err := repo.AcceptCounterOffer(ctx, counter)
	require.Error(t, err)
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)

	// The whole acceptance rolls back, the counter stays pending.
	storedCounter, errFind := repo.FindCounterOfferByID(ctx, counter.ID, false)
	require.NoError(t, errFind)
	assert.Equal(t, CounterStatusPending, storedCounter.Status)
}

func TestRepository_ExpireCounterOffers(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusPending)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := seedCounterOffer(t, db, swap.ID, targetID, CounterStatusPending, &past)
	fresh := seedCounterOffer(t, db, swap.ID, targetID, CounterStatusPending, &future)
	openEnded := seedCounterOffer(t, db, swap.ID, targetID, CounterStatusPending, nil)

	count, err := repo.ExpireCounterOffers(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	storedOverdue, err := repo.FindCounterOfferByID(ctx, overdue.ID, false)
	require.NoError(t, err)
	assert.Equal(t, CounterStatusExpired, storedOverdue.Status)

	storedFresh, err := repo.FindCounterOfferByID(ctx, fresh.ID, false)
	require.NoError(t, err)
	assert.Equal(t, CounterStatusPending, storedFresh.Status)

	storedOpenEnded, err := repo.FindCounterOfferByID(ctx, openEnded.ID, false)
	require.NoError(t, err)
	assert.Equal(t, CounterStatusPending, storedOpenEnded.Status)
}

func TestRepository_UpsertContract(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusAccepted)

	_, err := repo.FindContractBySwapID(ctx, swap.ID)
	require.Error(t, err)
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)

	initiatorSig := "sig-initiator"
	signedAt := time.Now().UTC()
	contract := &SwapContract{
		BaseModel:                 common.BaseModel{ID: uuid.New()},
		SwapRequestID:             swap.ID,
		ContractTerms:             swap.Terms,
		ContractHash:              "hash-v1",
		DigitalSignatureInitiator: &initiatorSig,
		SignedAtInitiator:         &signedAt,
	}
	require.NoError(t, repo.UpsertContract(ctx, contract, ContractPartyInitiator))

	stored, err := repo.FindContractBySwapID(ctx, swap.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-v1", stored.ContractHash)
	require.NotNil(t, stored.DigitalSignatureInitiator)
	assert.Equal(t, initiatorSig, *stored.DigitalSignatureInitiator)
	assert.Nil(t, stored.DigitalSignatureTarget)

	// The second signature updates the same row in place.
	targetSig := "sig-target"
	stored.DigitalSignatureTarget = &targetSig
	stored.SignedAtTarget = &signedAt
	stored.ContractHash = "hash-v2"
	require.NoError(t, repo.UpsertContract(ctx, stored, ContractPartyTarget))

	final, err := repo.FindContractBySwapID(ctx, swap.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ID, final.ID, "Upsert must not create a second contract row")
	assert.Equal(t, "hash-v2", final.ContractHash)
	require.NotNil(t, final.DigitalSignatureInitiator)
	require.NotNil(t, final.DigitalSignatureTarget)
	assert.True(t, final.IsFullyExecuted())

	var total int64
	require.NoError(t, db.Model(&SwapContract{}).Where("swap_request_id = ?", swap.ID).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestRepository_UpsertContract_RacingFirstSignsKeepBothSlots(t *testing.T) {
	repo, db := setupSwapRepository(t)
	ctx := context.Background()
	initiatorID, targetID := seedParticipants(t, db)
	swap := seedSwap(t, db, initiatorID, targetID, SwapStatusAccepted)

	// Both parties read "no contract yet" and build their own row.
	initiatorSig := "sig-initiator"
	targetSig := "sig-target"
	signedAt := time.Now().UTC()

	fromInitiator := &SwapContract{
		SwapRequestID:             swap.ID,
		ContractTerms:             swap.Terms,
		ContractHash:              "hash-initiator",
		DigitalSignatureInitiator: &initiatorSig,
		SignedAtInitiator:         &signedAt,
	}
	fromTarget := &SwapContract{
		SwapRequestID:          swap.ID,
		ContractTerms:          swap.Terms,
		ContractHash:           "hash-target",
		DigitalSignatureTarget: &targetSig,
		SignedAtTarget:         &signedAt,
	}

	require.NoError(t, repo.UpsertContract(ctx, fromInitiator, ContractPartyInitiator))
	require.NoError(t, repo.UpsertContract(ctx, fromTarget, ContractPartyTarget))

	final, err := repo.FindContractBySwapID(ctx, swap.ID)
	require.NoError(t, err)
	require.NotNil(t, final.DigitalSignatureInitiator, "the initiator signature must survive the other party's write")
	assert.Equal(t, initiatorSig, *final.DigitalSignatureInitiator)
	require.NotNil(t, final.DigitalSignatureTarget)
	assert.Equal(t, targetSig, *final.DigitalSignatureTarget)
	assert.NotNil(t, final.SignedAtInitiator)
	assert.NotNil(t, final.SignedAtTarget)

	var total int64
	require.NoError(t, db.Model(&SwapContract{}).Where("swap_request_id = ?", swap.ID).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}
