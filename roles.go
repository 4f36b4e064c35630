package auth

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account
	RoleUser UserRole = "USER"
	// RoleAdmin is an administrator account
	RoleAdmin UserRole = "ADMIN"
)

// ParseRole maps a raw string to a known role
func ParseRole(raw string) (UserRole, bool) {
	switch raw {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}
