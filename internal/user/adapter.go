// File: internal/user/adapter.go
package user

import (
	"albash_solutions_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:                dbUser.ID,
		Email:             dbUser.Email,
		FirstName:         dbUser.FirstName,
		LastName:          dbUser.LastName,
		Role:              dbUser.Role,
		ProfilePictureURL: dbUser.ProfilePictureURL,
		AuthProvider:      dbUser.AuthProvider,
		IsEmailVerified:   dbUser.IsEmailVerified,
		IsVerified:        dbUser.IsVerified,
		ReputationScore:   dbUser.ReputationScore,
		CreatedAt:         dbUser.CreatedAt,
		UpdatedAt:         dbUser.UpdatedAt,
		LastLoginAt:       dbUser.LastLoginAt,
	}
}

// SharedToResponse converts a shared.User DTO to the API response shape.
func SharedToResponse(u *shared.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: u.ProfilePictureURL,
		AuthProvider:      u.AuthProvider,
		IsEmailVerified:   u.IsEmailVerified,
		Role:              u.Role,
		IsVerified:        u.IsVerified,
		ReputationScore:   u.ReputationScore,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		LastLoginAt:       u.LastLoginAt,
	}
}
