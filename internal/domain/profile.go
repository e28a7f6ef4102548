package domain

import "time"

// Roles a profile can hold. blocked doubles as the access switch: a blocked
// rep is excluded from active counts and rejected by the auth middleware.
const (
	RoleAdmin      = "admin"
	RoleCommercial = "commercial"
	RoleBlocked    = "blocked"
)

// Profile is an application user. Its id is the auth subject (GoTrue user id).
type Profile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns the display name, falling back to the email when the
// name fields were never filled in.
func (p *Profile) FullName() string {
	if p.FirstName == "" && p.LastName == "" {
		return p.Email
	}
	return p.FirstName + " " + p.LastName
}

// IsActive reports whether the profile counts as an active rep.
func (p *Profile) IsActive() bool {
	return p.Role != RoleBlocked
}

// CreateUserRequest is the admin "new rep" form: an auth user plus a profile
// row created in one two-step operation.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
}
