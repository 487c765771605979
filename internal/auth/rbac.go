package auth

import "strings"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// DefaultRoles are created at startup when missing.
var DefaultRoles = []string{RoleAdmin, RoleUser}

func HasRole(roles []string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	for _, role := range roles {
		if strings.EqualFold(strings.TrimSpace(role), want) {
			return true
		}
	}
	return false
}
