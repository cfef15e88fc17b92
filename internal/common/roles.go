// File: internal/common/roles.go
package common

// Role tags assigned to users. Stored as plain strings on the users table.
const (
	RoleUser     = "user"
	RoleAdmin    = "admin"
	RoleVerifier = "verifier"
	RoleBuilder  = "builder"
)

// CanModerate reports whether the role may act on resources it does not own.
// Verification review additionally accepts the verifier role; everything
// else that bypasses ownership checks requires admin.
func CanModerate(role string) bool {
	return role == RoleAdmin
}

// CanReviewVerifications reports whether the role may review identity
// verification requests.
func CanReviewVerifications(role string) bool {
	return role == RoleAdmin || role == RoleVerifier
}
