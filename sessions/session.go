package sessions

// RoleType is the authorization level a login response grants.
type RoleType string

const (
	RoleUser   RoleType = "user"   // Regular account holder, lands on the dashboard
	RoleAdmin  RoleType = "admin"  // Can manage users through the admin panel
	RoleMaster RoleType = "master" // Elevated administrator created from the backend environment
)

// ParseRole maps a stored role string to a RoleType. Anything unknown,
// including the empty string, is treated as a regular user.
func ParseRole(s string) RoleType {
	switch RoleType(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleMaster:
		return RoleMaster
	default:
		return RoleUser
	}
}

// IsAdministrative reports whether the role belongs on the admin panel.
func (r RoleType) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleMaster
}

// Session is the device's single authenticated identity. Empty fields are absent.
type Session struct {
	Token    string   `json:"token,omitempty"`    // Opaque bearer credential
	UserID   string   `json:"user_id,omitempty"`  // Backend user identifier
	Username string   `json:"username,omitempty"` // Display name
	Role     RoleType `json:"role,omitempty"`     // Authorization level
}

// Authenticated reports whether a bearer token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// ResolvedRole returns the effective role. A session without a token has no role.
func (s Session) ResolvedRole() RoleType {
	if !s.Authenticated() {
		return ""
	}
	return ParseRole(string(s.Role))
}
