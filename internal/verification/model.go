// File: internal/verification/model.go
package verification

import (
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/user"

	"github.com/google/uuid"
)

// VerificationStatus is the review state of an identity verification
// request.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

// VerificationRequest is a user's application to become a verified
// account. Document upload happens elsewhere; only the URL is stored.
type VerificationRequest struct {
	common.BaseModel
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Status      VerificationStatus `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	DocumentURL string             `gorm:"column:document_url;type:text;not null" json:"document_url"`
	ReviewNotes *string            `gorm:"column:review_notes;type:text" json:"review_notes,omitempty"`
	ReviewDate  *time.Time         `gorm:"column:review_date" json:"review_date,omitempty"`

	User *user.User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (VerificationRequest) TableName() string {
	return "verification_requests"
}

// --- DTOs ---

type SubmitVerificationRequest struct {
	DocumentURL string `json:"document_url" binding:"required,url"`
}

type ReviewVerificationRequest struct {
	Decision    string  `json:"decision" binding:"required,oneof=approve reject"`
	ReviewNotes *string `json:"review_notes,omitempty"`
}
