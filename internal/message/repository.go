// File: internal/message/repository.go
package message

import (
	"context"
	"fmt"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines message data operations.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	ListBySwap(ctx context.Context, swapRequestID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error)
	MarkReadForRecipient(ctx context.Context, swapRequestID, recipientID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM message repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, message *Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListBySwap retrieves the conversation for a swap, oldest first so the
// thread reads top to bottom.
func (r *gormRepository) ListBySwap(ctx context.Context, swapRequestID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error) {
	var messages []Message
	var total int64

	base := r.db.WithContext(ctx).Model(&Message{}).Where("swap_request_id = ?", swapRequestID)
	if err := base.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting messages for swap %s failed: %w", swapRequestID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := r.db.WithContext(ctx).
		Where("swap_request_id = ?", swapRequestID).
		Order("created_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching messages for swap %s failed: %w", swapRequestID, err)
	}
	return messages, pagination, nil
}

func (r *gormRepository) MarkReadForRecipient(ctx context.Context, swapRequestID, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Message{}).
		Where("swap_request_id = ? AND recipient_id = ? AND is_read = ?", swapRequestID, recipientID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read for swap %s: %w", swapRequestID, result.Error)
	}
	return result.RowsAffected, nil
}
