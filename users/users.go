package users

import "slices"

// RoleType is a role name as issued by the backend.
type RoleType = string

const (
	// The backend has used both naming conventions for administrators.
	RoleAdmin       RoleType = "ADMIN"
	RoleSpringAdmin RoleType = "ROLE_ADMIN"

	RoleOperator RoleType = "OPERATOR"
	RoleCustomer RoleType = "CUSTOMER"
)

// User is the identity record returned by the auth endpoints. The session treats it as
// opaque: it is only ever replaced as a whole.
type User struct {
	ID            string     `json:"id"`                   // Unique identifier for the user
	Username      string     `json:"username"`             // Unique username
	Email         string     `json:"email"`                // User's email address
	FirstName     string     `json:"firstName,omitempty"`  // First name of the user
	LastName      string     `json:"lastName,omitempty"`   // Last name of the user
	CustomerID    string     `json:"customerId,omitempty"` // Linked KYC customer, if any
	Roles         []RoleType `json:"roles"`                // Roles assigned to the user
	Enabled       bool       `json:"enabled"`              // Enabled, can the user log in
	EmailVerified bool       `json:"emailVerified"`        // EmailVerified, has the email been confirmed
	MFAEnabled    bool       `json:"mfaEnabled"`           // MFAEnabled, is multifactor authentication on
}

// HasRole reports whether the user carries the given role. A nil user has no roles.
func (u *User) HasRole(role RoleType) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// IsAdmin returns true if the user has administrator privileges under either naming convention.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSpringAdmin)
}

// IsOperator returns true if the user is a compliance operator.
func (u *User) IsOperator() bool {
	return u.HasRole(RoleOperator)
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

// Clone returns a deep copy so that callers can never alias the live session record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
