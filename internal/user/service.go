// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"albash_solutions_backend/internal/common"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceImplementation implements the shared.Service interface plus the
// profile operations exposed by the user handler.
type ServiceImplementation struct {
	repo   Repository
	cfg    *config.Config
	logger *zap.Logger
}

var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		cfg:    cfg,
		logger: logger.Named("user-service"),
	}
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found by ID", zap.String("userID", id.String()))
		} else {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id.String()))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*shared.User, error) {
	dbUser, err := s.repo.FindByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// GetOrCreateUserFromFirebaseClaims resolves the local user row for a
// verified Firebase ID token, provisioning one on first sight. Profile
// fields from the token are mirrored into the local row on each login.
func (s *ServiceImplementation) GetOrCreateUserFromFirebaseClaims(ctx context.Context, token *firebaseauth.Token) (*shared.User, bool, error) {
	if token == nil || token.UID == "" {
		return nil, false, common.ErrUnauthorized.WithDetails("Firebase token is missing a UID.")
	}

	email, _ := token.Claims["email"].(string)
	emailVerified, _ := token.Claims["email_verified"].(bool)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	now := time.Now()

	dbUser, err := s.repo.FindByFirebaseUID(ctx, token.UID)
	if err == nil {
		changed := s.applyClaims(dbUser, email, emailVerified, name, picture)
		dbUser.LastLoginAt = &now
		if updErr := s.repo.Update(ctx, dbUser); updErr != nil {
			// Login still succeeds on a stale profile row.
			s.logger.Error("Failed to refresh user row on login",
				zap.Error(updErr), zap.String("userID", dbUser.ID.String()))
		} else if changed {
			s.logger.Info("User profile refreshed from Firebase claims",
				zap.String("userID", dbUser.ID.String()))
		}
		return DBToShared(dbUser), false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding user by Firebase UID", zap.Error(err), zap.String("firebaseUID", token.UID))
		return nil, false, err
	}

	uid := token.UID
	dbNewUser := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AuthProvider:    "firebase",
		FirebaseUID:     &uid,
		IsEmailVerified: emailVerified,
		Role:            common.RoleUser,
		LastLoginAt:     &now,
	}
	s.applyClaims(dbNewUser, email, emailVerified, name, picture)

	if err := s.repo.Create(ctx, dbNewUser); err != nil {
		s.logger.Error("Failed to provision user from Firebase claims",
			zap.Error(err), zap.String("firebaseUID", token.UID))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, false, apiErr
		}
		return nil, false, fmt.Errorf("failed to provision user: %w", err)
	}

	s.logger.Info("New user provisioned from Firebase claims",
		zap.String("userID", dbNewUser.ID.String()), zap.String("firebaseUID", token.UID))
	return DBToShared(dbNewUser), true, nil
}

// applyClaims copies token profile claims onto the user row, reporting
// whether anything changed.
func (s *ServiceImplementation) applyClaims(dbUser *User, email string, emailVerified bool, name, picture string) bool {
	changed := false

	if email != "" {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if dbUser.Email == nil || *dbUser.Email != normalized {
			dbUser.Email = &normalized
			changed = true
		}
	}
	if emailVerified != dbUser.IsEmailVerified {
		dbUser.IsEmailVerified = emailVerified
		changed = true
	}
	if name != "" && dbUser.FirstName == nil {
		first, last := splitDisplayName(name)
		dbUser.FirstName = &first
		if last != "" {
			dbUser.LastName = &last
		}
		changed = true
	}
	if picture != "" && (dbUser.ProfilePictureURL == nil || *dbUser.ProfilePictureURL != picture) {
		dbUser.ProfilePictureURL = &picture
		changed = true
	}
	return changed
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// UpdateProfile applies the mutable profile fields for the given user.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		dbUser.FirstName = req.FirstName
	}
	if req.LastName != nil {
		dbUser.LastName = req.LastName
	}
	if req.ProfilePictureURL != nil {
		dbUser.ProfilePictureURL = req.ProfilePictureURL
	}
	dbUser.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to update user profile", zap.Error(err), zap.String("userID", userID.String()))
		return nil, err
	}
	s.logger.Info("User profile updated", zap.String("userID", userID.String()))
	return DBToShared(dbUser), nil
}
