// File: internal/shared/core.go
// Package shared holds cross-module contracts that would otherwise create
// import cycles between the user module and the middleware layer.
package shared

import (
	"context"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// User is the identity-layer view of a user account.
type User struct {
	ID                uuid.UUID
	Email             *string
	FirstName         *string
	LastName          *string
	Role              string
	ProfilePictureURL *string
	AuthProvider      string
	IsEmailVerified   bool
	IsVerified        bool
	ReputationScore   int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}

// Service is the user-provisioning contract consumed by the auth middleware.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetOrCreateUserFromFirebaseClaims(ctx context.Context, firebaseToken *firebaseauth.Token) (usr *User, wasCreated bool, err error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
}
