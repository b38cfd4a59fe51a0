package types

import (
	"fmt"
	"strings"
)

// Role is the account type a user picks at signup. It never changes after
// the user row is created.
type Role string

const (
	RoleUser  Role = "user"
	RoleNGO   Role = "NGO"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = fmt.Errorf("unknown role")

// ParseRole maps a stored or session type string onto a Role. Matching is
// case-insensitive, so "ngo" and "NGO" are the same role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "ngo":
		return RoleNGO, nil
	case "admin":
		return RoleAdmin, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Principal is the logged in identity carried by the session.
type Principal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  Role   `json:"type"`
}
