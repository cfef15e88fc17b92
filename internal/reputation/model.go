// File: internal/reputation/model.go
package reputation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reasons recorded on reputation log entries.
const (
	ReasonVerificationApproved = "verification_approved"
	ReasonSwapCompleted        = "swap_completed"
	ReasonAdminAdjustment      = "admin_adjustment"
)

// ReputationLog is an immutable record of a single score adjustment.
type ReputationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Delta     int       `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"type:varchar(100);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns the UUID primary key, mirroring common.BaseModel.
func (l *ReputationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM.
func (ReputationLog) TableName() string {
	return "reputation_log"
}

// AdjustScoreRequest is the admin-facing adjustment payload.
type AdjustScoreRequest struct {
	Points int    `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required,max=100"`
}

// ScoreResponse reports a user's current reputation score.
type ScoreResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Score  int       `json:"score"`
}
