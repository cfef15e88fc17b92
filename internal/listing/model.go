// File: internal/listing/model.go
package listing

import (
	"encoding/json"
	"fmt"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/user"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// --- Main Listing Model ---
type ListingStatus string

const (
	StatusActive          ListingStatus = "active"
	StatusPendingApproval ListingStatus = "pending_approval"
	StatusSwapped         ListingStatus = "swapped"
	StatusAdminRemoved    ListingStatus = "admin_removed"
)

// ListingType distinguishes how the underlying good exists.
type ListingType string

const (
	TypePhysical  ListingType = "physical"
	TypeDigital   ListingType = "digital"
	TypeTokenized ListingType = "tokenized"
)

type Listing struct {
	common.BaseModel
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	User           *user.User     `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title          string         `gorm:"type:varchar(255);not null"`
	Slug           string         `gorm:"type:varchar(300);not null;uniqueIndex"`
	Description    string         `gorm:"type:text;not null"`
	ListingType    ListingType    `gorm:"type:varchar(50);not null"`
	EstimatedValue *float64       `gorm:"type:decimal(12,2)"`
	TokenReference *string        `gorm:"type:varchar(255)"` // set for tokenized listings only
	Tags           pq.StringArray `gorm:"type:text[]"`
	Status         ListingStatus  `gorm:"type:varchar(50);not null;default:'active';index"`
	AdminNotes     *string        `gorm:"type:text"`
}

func (Listing) TableName() string {
	return "listings"
}

// ElasticsearchDoc renders the listing as its search index document.
// The write-path mirror and the bulk reindex command share this one
// builder so the document shape cannot drift between them.
func (l *Listing) ElasticsearchDoc() (string, error) {
	doc := map[string]interface{}{
		"title":        l.Title,
		"description":  l.Description,
		"slug":         l.Slug,
		"listing_type": string(l.ListingType),
		"user_id":      l.UserID.String(),
		"status":       string(l.Status),
		"tags":         []string(l.Tags),
		"created_at":   l.CreatedAt,
		"updated_at":   l.UpdatedAt,
	}
	if l.EstimatedValue != nil {
		doc["estimated_value"] = *l.EstimatedValue
	}
	if l.TokenReference != nil {
		doc["token_reference"] = *l.TokenReference
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling listing %s for the search index: %w", l.ID, err)
	}
	return string(docJSON), nil
}

// --- DTOs ---

type CreateListingRequest struct {
	Title          string   `json:"title" binding:"required,max=255"`
	Description    string   `json:"description" binding:"required"`
	ListingType    string   `json:"listing_type" binding:"required,oneof=physical digital tokenized"`
	EstimatedValue *float64 `json:"estimated_value,omitempty" binding:"omitempty,gt=0"`
	TokenReference *string  `json:"token_reference,omitempty" binding:"omitempty,max=255"`
	Tags           []string `json:"tags,omitempty" binding:"omitempty,max=10,dive,max=50"`
}

type UpdateListingRequest struct {
	Title          *string  `json:"title,omitempty" binding:"omitempty,max=255"`
	Description    *string  `json:"description,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty" binding:"omitempty,gt=0"`
	Tags           []string `json:"tags,omitempty" binding:"omitempty,max=10,dive,max=50"`
}

type AdminUpdateStatusRequest struct {
	Status     string  `json:"status" binding:"required,oneof=active pending_approval swapped admin_removed"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// ListingSearchQuery captures the filters for listing search.
type ListingSearchQuery struct {
	SearchTerm  *string
	ListingType *ListingType
	Status      *ListingStatus
	UserID      *uuid.UUID
	Page        int
	PageSize    int
	SortBy      string // created_at, title, estimated_value
	SortOrder   string // asc, desc
}

// ListingResponse is the API response shape for a listing.
type ListingResponse struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	User           *user.UserSummary `json:"user,omitempty"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description"`
	ListingType    ListingType       `json:"listing_type"`
	EstimatedValue *float64          `json:"estimated_value,omitempty"`
	TokenReference *string           `json:"token_reference,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Status         ListingStatus     `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToListingResponse converts a Listing model to its response shape.
func ToListingResponse(l *Listing) ListingResponse {
	resp := ListingResponse{
		ID:             l.ID,
		UserID:         l.UserID,
		Title:          l.Title,
		Slug:           l.Slug,
		Description:    l.Description,
		ListingType:    l.ListingType,
		EstimatedValue: l.EstimatedValue,
		TokenReference: l.TokenReference,
		Tags:           l.Tags,
		Status:         l.Status,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if l.User != nil {
		resp.User = user.ToUserSummary(l.User)
	}
	return resp
}

// ToListingResponses converts a slice of listings.
func ToListingResponses(listings []Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToListingResponse(&listings[i]))
	}
	return out
}
