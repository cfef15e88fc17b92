// File: internal/message/model.go
package message

import (
	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/swap"
	"albash_solutions_backend/internal/user"

	"github.com/google/uuid"
)

// Message is a chat entry between the two participants of a swap.
type Message struct {
	common.BaseModel
	SwapRequestID uuid.UUID `gorm:"column:swap_request_id;type:uuid;not null;index" json:"swap_request_id"`
	SenderID      uuid.UUID `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	RecipientID   uuid.UUID `gorm:"column:recipient_id;type:uuid;not null;index" json:"recipient_id"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`

	SwapRequest *swap.SwapRequest `gorm:"foreignKey:SwapRequestID;references:ID" json:"-"`
	Sender      *user.User        `gorm:"foreignKey:SenderID;references:ID" json:"-"`
	Recipient   *user.User        `gorm:"foreignKey:RecipientID;references:ID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// --- DTOs ---

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=5000"`
}
