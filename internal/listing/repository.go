// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id uuid.UUID, preloadUser bool) (*Listing, error)
	FindBySlug(ctx context.Context, slug string) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	Search(ctx context.Context, query ListingSearchQuery) ([]Listing, *common.Pagination, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus, adminNotes *string) error
	MarkSwapped(ctx context.Context, ids []uuid.UUID) (int64, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new listing record.
func (r *gormRepository) Create(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A listing with this slug already exists.")
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// FindByID retrieves a listing by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preloadUser bool) (*Listing, error) {
	var listing Listing
	query := r.db.WithContext(ctx)
	if preloadUser {
		query = query.Preload("User")
	}
	err := query.First(&listing, "listings.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &listing, nil
}

// FindBySlug retrieves a listing by its slug.
func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Listing, error) {
	var listing Listing
	err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &listing, nil
}

// Update saves the full listing record.
func (r *gormRepository) Update(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A listing with this slug already exists.")
		}
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

// Delete removes a listing owned by userID. Missing row or foreign owner
// both surface as not found.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Listing{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete listing %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Listing not found or not owned by user.")
	}
	return nil
}

// Search retrieves listings matching the query filters with pagination.
func (r *gormRepository) Search(ctx context.Context, query ListingSearchQuery) ([]Listing, *common.Pagination, error) {
	var listings []Listing
	var total int64

	dbQuery := r.db.WithContext(ctx).Model(&Listing{})

	if query.SearchTerm != nil && *query.SearchTerm != "" {
		term := "%" + strings.ToLower(*query.SearchTerm) + "%"
		dbQuery = dbQuery.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if query.ListingType != nil {
		dbQuery = dbQuery.Where("listing_type = ?", *query.ListingType)
	}
	if query.Status != nil {
		dbQuery = dbQuery.Where("status = ?", *query.Status)
	}
	if query.UserID != nil {
		dbQuery = dbQuery.Where("user_id = ?", *query.UserID)
	}

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting listings failed: %w", err)
	}

	pagination := common.NewPagination(total, query.Page, query.PageSize)

	sortBy := "created_at"
	switch query.SortBy {
	case "title", "estimated_value", "created_at":
		sortBy = query.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	offset := (query.Page - 1) * query.PageSize
	if query.Page <= 0 {
		offset = 0
	}

	err := dbQuery.Preload("User").
		Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Limit(query.PageSize).
		Offset(offset).
		Find(&listings).Error
	if err != nil {
		return nil, nil, fmt.Errorf("searching listings failed: %w", err)
	}
	return listings, pagination, nil
}

// UpdateStatus sets the listing status and optional admin notes.
func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus, adminNotes *string) error {
	updates := map[string]interface{}{"status": status}
	if adminNotes != nil {
		updates["admin_notes"] = *adminNotes
	}
	result := r.db.WithContext(ctx).Model(&Listing{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update listing status for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Listing not found.")
	}
	return nil
}

// MarkSwapped moves the given active listings to swapped status.
func (r *gormRepository) MarkSwapped(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&Listing{}).
		Where("id IN ? AND status = ?", ids, StatusActive).
		Update("status", StatusSwapped)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark listings swapped: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FindAllForSync pages through all listings in a stable order for the
// search index rebuild command.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Listing, error) {
	var listings []Listing
	err := r.db.WithContext(ctx).Preload("User").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings for sync: %w", err)
	}
	return listings, nil
}
