// File: internal/user/model.go
package user

import (
	"time"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel          // Embeds ID, CreatedAt, UpdatedAt
	Email             *string `gorm:"type:varchar(255);uniqueIndex"` // Pointer to allow NULL
	FirstName         *string `gorm:"type:varchar(100)"`
	LastName          *string `gorm:"type:varchar(100)"`
	ProfilePictureURL *string `gorm:"type:text"`
	AuthProvider      string  `gorm:"type:varchar(50);not null;default:'firebase'"`
	FirebaseUID       *string `gorm:"type:varchar(255);uniqueIndex"`
	IsEmailVerified   bool    `gorm:"not null;default:false"`
	Role              string  `gorm:"type:varchar(50);not null;default:'user'"` // user, admin, verifier, builder
	IsVerified        bool    `gorm:"not null;default:false"`
	ReputationScore   int     `gorm:"not null;default:0"`
	LastLoginAt       *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// --- DTOs (Data Transfer Objects) for API requests/responses ---

// UpdateProfileRequest defines the mutable profile fields.
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName          *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty" binding:"omitempty,url"`
}

// UserSummary is the compact user shape embedded in other resources.
type UserSummary struct {
	ID                uuid.UUID `json:"id"`
	FirstName         *string   `json:"first_name,omitempty"`
	LastName          *string   `json:"last_name,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	IsVerified        bool      `json:"is_verified"`
	ReputationScore   int       `json:"reputation_score"`
}

// ToUserSummary converts a User model to its embedded summary shape.
func ToUserSummary(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: u.ProfilePictureURL,
		IsVerified:        u.IsVerified,
		ReputationScore:   u.ReputationScore,
	}
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID                uuid.UUID  `json:"id"`
	Email             *string    `json:"email,omitempty"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	AuthProvider      string     `json:"auth_provider"`
	IsEmailVerified   bool       `json:"is_email_verified"`
	Role              string     `json:"role"`
	IsVerified        bool       `json:"is_verified"`
	ReputationScore   int        `json:"reputation_score"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

