// File: internal/reputation/repository.go
package reputation

import (
	"context"
	"fmt"
	"time"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines reputation data operations.
type Repository interface {
	AdjustScore(ctx context.Context, userID uuid.UUID, delta int, reason string) (int, error)
	GetScore(ctx context.Context, userID uuid.UUID) (int, error)
	GetHistory(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]ReputationLog, *common.Pagination, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM reputation repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// AdjustScore applies the delta to the user's score and records a log
// entry in one transaction. The score is clamped at zero inside the
// UPDATE itself, so concurrent adjustments serialize on the row without
// a read-modify-write window. Returns the resulting score.
func (r *gormRepository) AdjustScore(ctx context.Context, userID uuid.UUID, delta int, reason string) (int, error) {
	var newScore int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			"UPDATE users SET reputation_score = CASE WHEN reputation_score + ? < 0 THEN 0 ELSE reputation_score + ? END, updated_at = ? WHERE id = ?",
			delta, delta, time.Now().UTC(), userID,
		)
		if result.Error != nil {
			return fmt.Errorf("failed to adjust reputation score for user %s: %w", userID, result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("User not found for reputation adjustment.")
		}

		entry := &ReputationLog{UserID: userID, Delta: delta, Reason: reason}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record reputation log for user %s: %w", userID, err)
		}

		return tx.Raw("SELECT reputation_score FROM users WHERE id = ?", userID).Scan(&newScore).Error
	})
	if err != nil {
		return 0, err
	}
	return newScore, nil
}

// GetScore reads the user's current reputation score.
func (r *gormRepository) GetScore(ctx context.Context, userID uuid.UUID) (int, error) {
	var score int
	result := r.db.WithContext(ctx).Raw("SELECT reputation_score FROM users WHERE id = ?", userID).Scan(&score)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to read reputation score for user %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, common.ErrNotFound.WithDetails("User not found.")
	}
	return score, nil
}

// GetHistory retrieves the user's reputation log, newest first.
func (r *gormRepository) GetHistory(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]ReputationLog, *common.Pagination, error) {
	var entries []ReputationLog
	var total int64

	if err := r.db.WithContext(ctx).Model(&ReputationLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting reputation log for user %s failed: %w", userID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching reputation log for user %s failed: %w", userID, err)
	}
	return entries, pagination, nil
}
