// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	SwapProposed         NotificationType = "swap_proposed"
	SwapAccepted         NotificationType = "swap_accepted"
	SwapRejected         NotificationType = "swap_rejected"
	SwapCancelled        NotificationType = "swap_cancelled"
	SwapCompleted        NotificationType = "swap_completed"
	SwapDisputed         NotificationType = "swap_disputed"
	SwapCounterOffer     NotificationType = "swap_counter_offer"
	SwapCounterAccepted  NotificationType = "swap_counter_offer_accepted"
	SwapCounterRejected  NotificationType = "swap_counter_offer_rejected"
	SwapContractSigned   NotificationType = "swap_contract_signed"
	VerificationApproved NotificationType = "verification_approved"
	VerificationRejected NotificationType = "verification_rejected"
	ReputationAdjusted   NotificationType = "reputation_adjusted"
	NewMessage           NotificationType = "new_message"
	ListingPending       NotificationType = "listing_pending_approval"
	ListingStatusChanged NotificationType = "listing_status_updated"
)

// Notification represents a user notification. Rows are append-only;
// only the is_read flag ever changes after insert.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_user_status" json:"user_id"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Type        NotificationType `gorm:"type:varchar(100);not null" json:"type"`
	ReferenceID *uuid.UUID       `gorm:"type:uuid" json:"reference_id,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notification_user_status" json:"is_read"`
	CreatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_notification_user_status" json:"created_at"`
}

// BeforeCreate assigns the UUID primary key, mirroring common.BaseModel.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
