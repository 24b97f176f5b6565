package domain

import "time"

// Role is an opaque access-control role carried through from the identity
// provider. The backend does not attach billing or feature semantics to it.
type Role string

const (
	RoleFreemium Role = "freemium"
	RolePremium  Role = "premium"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw claim value into a Role.
// Unknown roles are dropped rather than rejected.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleFreemium, RolePremium, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// AuthenticatedUser is the identity extracted from a verified token.
type AuthenticatedUser struct {
	SubjectID string
	Roles     []Role
	Email     string
}

// HasRole reports whether the principal carries the given role.
func (u AuthenticatedUser) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AppUser is a locally provisioned application user, created on first
// authenticated request and keyed by the provider subject.
type AppUser struct {
	ID                 string    `json:"id"`
	AuthProvider       string    `json:"auth_provider"`
	AuthProviderUserID string    `json:"auth_provider_user_id"`
	Email              *string   `json:"email,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
