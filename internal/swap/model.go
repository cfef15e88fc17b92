// File: internal/swap/model.go
package swap

import (
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/listing"
	"albash_solutions_backend/internal/user"

	"github.com/google/uuid"
)

// SwapStatus is the lifecycle state of a swap request.
//
// Transitions: pending -> accepted -> completed; pending -> rejected;
// accepted -> disputed; any non-terminal state -> cancelled. rejected,
// completed and cancelled are terminal.
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusDisputed  SwapStatus = "disputed"
	SwapStatusCancelled SwapStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusRejected || s == SwapStatusCompleted || s == SwapStatusCancelled
}

// CounterOfferStatus is the lifecycle state of a counter-offer.
type CounterOfferStatus string

const (
	CounterStatusPending  CounterOfferStatus = "pending"
	CounterStatusAccepted CounterOfferStatus = "accepted"
	CounterStatusRejected CounterOfferStatus = "rejected"
	CounterStatusExpired  CounterOfferStatus = "expired"
)

// SwapRequest represents a proposed exchange between two parties.
// Rows are never hard-deleted; terminal statuses retain the history.
type SwapRequest struct {
	common.BaseModel
	InitiatorID       uuid.UUID       `gorm:"column:initiator_id;type:uuid;not null;index" json:"initiator_id"`
	TargetUserID      uuid.UUID       `gorm:"column:target_user_id;type:uuid;not null;index" json:"target_user_id"`
	OfferingListingID *uuid.UUID      `gorm:"column:offering_listing_id;type:uuid" json:"offering_listing_id,omitempty"`
	TargetListingID   *uuid.UUID      `gorm:"column:target_listing_id;type:uuid" json:"target_listing_id,omitempty"`
	Status            SwapStatus      `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	Terms             common.JSONMap  `gorm:"type:jsonb" json:"terms,omitempty"`
	ContractHash      *string         `gorm:"column:contract_hash;type:varchar(64)" json:"contract_hash,omitempty"`

	Initiator       *user.User       `gorm:"foreignKey:InitiatorID;references:ID" json:"-"`
	Target          *user.User       `gorm:"foreignKey:TargetUserID;references:ID" json:"-"`
	OfferingListing *listing.Listing `gorm:"foreignKey:OfferingListingID;references:ID" json:"-"`
	TargetListing   *listing.Listing `gorm:"foreignKey:TargetListingID;references:ID" json:"-"`
}

func (SwapRequest) TableName() string {
	return "swap_requests"
}

// IsParticipant reports whether the user is a party to this swap.
func (r *SwapRequest) IsParticipant(userID uuid.UUID) bool {
	return r.InitiatorID == userID || r.TargetUserID == userID
}

// Counterparty returns the other participant relative to userID.
func (r *SwapRequest) Counterparty(userID uuid.UUID) uuid.UUID {
	if r.InitiatorID == userID {
		return r.TargetUserID
	}
	return r.InitiatorID
}

// SwapCounterOffer is a proposed amendment to a pending SwapRequest.
// Only the target of the parent request may author one.
type SwapCounterOffer struct {
	common.BaseModel
	SwapRequestID      uuid.UUID          `gorm:"column:swap_request_id;type:uuid;not null;index" json:"swap_request_id"`
	CounterInitiatorID uuid.UUID          `gorm:"column:counter_initiator_id;type:uuid;not null" json:"counter_initiator_id"`
	CounterTerms       common.JSONMap     `gorm:"column:counter_terms;type:jsonb" json:"counter_terms,omitempty"`
	Status             CounterOfferStatus `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	ExpiresAt          *time.Time         `gorm:"column:expires_at" json:"expires_at,omitempty"`

	SwapRequest *SwapRequest `gorm:"foreignKey:SwapRequestID;references:ID" json:"-"`
}

func (SwapCounterOffer) TableName() string {
	return "swap_counter_offers"
}

// IsExpired reports whether the counter has passed its expiry time.
func (c *SwapCounterOffer) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// ContractParty identifies which signature slot of a contract a write
// is allowed to touch.
type ContractParty string

const (
	ContractPartyInitiator ContractParty = "initiator"
	ContractPartyTarget    ContractParty = "target"
)

// SwapContract is the bilateral signature record for a SwapRequest,
// one-to-one keyed by swap_request_id.
type SwapContract struct {
	common.BaseModel
	SwapRequestID             uuid.UUID      `gorm:"column:swap_request_id;type:uuid;not null;uniqueIndex" json:"swap_request_id"`
	ContractTerms             common.JSONMap `gorm:"column:contract_terms;type:jsonb" json:"contract_terms,omitempty"`
	ContractHash              string         `gorm:"column:contract_hash;type:varchar(64);not null" json:"contract_hash"`
	DigitalSignatureInitiator *string        `gorm:"column:digital_signature_initiator;type:text" json:"digital_signature_initiator,omitempty"`
	DigitalSignatureTarget    *string        `gorm:"column:digital_signature_target;type:text" json:"digital_signature_target,omitempty"`
	SignedAtInitiator         *time.Time     `gorm:"column:signed_at_initiator" json:"signed_at_initiator,omitempty"`
	SignedAtTarget            *time.Time     `gorm:"column:signed_at_target" json:"signed_at_target,omitempty"`

	SwapRequest *SwapRequest `gorm:"foreignKey:SwapRequestID;references:ID" json:"-"`
}

func (SwapContract) TableName() string {
	return "swap_contracts"
}

// IsFullyExecuted reports whether both parties have signed. Fully
// executed contracts are immutable.
func (c *SwapContract) IsFullyExecuted() bool {
	return c.DigitalSignatureInitiator != nil && c.DigitalSignatureTarget != nil
}

// --- DTOs ---

type ProposeSwapRequest struct {
	TargetUserID      string         `json:"target_user_id" binding:"required,uuid"`
	OfferingListingID *string        `json:"offering_listing_id,omitempty" binding:"omitempty,uuid"`
	TargetListingID   *string        `json:"target_listing_id,omitempty" binding:"omitempty,uuid"`
	Terms             common.JSONMap `json:"terms,omitempty"`
}

type RespondSwapRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject"`
}

type CreateCounterOfferRequest struct {
	CounterTerms common.JSONMap `json:"counter_terms" binding:"required"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
}

type SignContractRequest struct {
	Signature     *string        `json:"signature,omitempty"`
	ContractTerms common.JSONMap `json:"contract_terms,omitempty"`
}

// SwapListQuery captures filters for listing a user's swaps.
type SwapListQuery struct {
	Status   *SwapStatus
	Page     int
	PageSize int
}
