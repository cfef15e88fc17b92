// File: internal/verification/repository.go
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines verification data operations. Review is a
// conditional transition out of pending combined with the verified-flag
// flip on the users row, both in one transaction.
type Repository interface {
	Create(ctx context.Context, request *VerificationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*VerificationRequest, error)
	HasPendingRequest(ctx context.Context, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]VerificationRequest, *common.Pagination, error)
	ListPending(ctx context.Context, page, pageSize int) ([]VerificationRequest, *common.Pagination, error)
	Review(ctx context.Context, id uuid.UUID, status VerificationStatus, notes *string, reviewDate time.Time) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM verification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, request *VerificationRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create verification request: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*VerificationRequest, error) {
	var request VerificationRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Verification request not found.")
		}
		return nil, fmt.Errorf("failed to find verification request %s: %w", id, err)
	}
	return &request, nil
}

func (r *gormRepository) HasPendingRequest(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&VerificationRequest{}).
		Where("user_id = ? AND status = ?", userID, StatusPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for pending verification request: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]VerificationRequest, *common.Pagination, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), page, pageSize)
}

func (r *gormRepository) ListPending(ctx context.Context, page, pageSize int) ([]VerificationRequest, *common.Pagination, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", StatusPending), page, pageSize)
}

func (r *gormRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int) ([]VerificationRequest, *common.Pagination, error) {
	var requests []VerificationRequest
	var total int64

	if err := query.Model(&VerificationRequest{}).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting verification requests failed: %w", err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := query.Order("created_at ASC").Limit(pageSize).Offset(offset).Find(&requests).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching verification requests failed: %w", err)
	}
	return requests, pagination, nil
}

// Review moves a pending request to the given terminal status and syncs
// the user's is_verified flag in the same transaction. Returns false
// when the request was no longer pending.
func (r *gormRepository) Review(ctx context.Context, id uuid.UUID, status VerificationStatus, notes *string, reviewDate time.Time) (bool, error) {
	reviewed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request VerificationRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Verification request not found.")
			}
			return fmt.Errorf("failed to load verification request %s: %w", id, err)
		}

		result := tx.Model(&VerificationRequest{}).
			Where("id = ? AND status = ?", id, StatusPending).
			Updates(map[string]interface{}{
				"status":       status,
				"review_notes": notes,
				"review_date":  reviewDate,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to review verification request %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		verified := status == StatusApproved
		if err := tx.Exec(
			"UPDATE users SET is_verified = ?, updated_at = ? WHERE id = ?",
			verified, time.Now().UTC(), request.UserID,
		).Error; err != nil {
			return fmt.Errorf("failed to update verified flag for user %s: %w", request.UserID, err)
		}

		reviewed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return reviewed, nil
}
