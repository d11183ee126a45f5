package model

import "time"

// Role enumerates the closed set of user roles stored in the
// `users.role` enum column. New users created by an admin default to
// ADMIN; self-registration is restricted to the non-admin subset.
type Role string

const (
	RoleSuperadmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleRentor     Role = "RENTOR"
	RoleClient     Role = "CLIENT"
)

// NonAdminRoles is the subset a visitor may pick during self-registration.
var NonAdminRoles = []Role{RoleRentor, RoleClient}

// IsNonAdmin reports whether r belongs to the self-registration subset.
func (r Role) IsNonAdmin() bool {
	for _, allowed := range NonAdminRoles {
		if r == allowed {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleRentor, RoleClient:
		return true
	}
	return false
}

// User mirrors the `users` table. PasswordHash stays empty until the
// registration flow completes and is always stripped before a user is
// serialized to a client (json:"-").
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – user's first name (length capped by config).
//  LastName     – user's last name (length capped by config).
//  Email        – unique email address.
//  Phone        – unique phone number, optional.
//  PasswordHash – bcrypt hash, nullable until set.
//  Role         – SUPERADMIN, ADMIN, RENTOR or CLIENT.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Role profiles eagerly loaded by the *WithRelations lookups.
	Client *Client `json:"client,omitempty"`
	Rentor *Rentor `json:"rentor,omitempty"`
}

// Sanitized returns a copy safe for external representation. The hash is
// already hidden from JSON; this clears it for callers that log or copy
// the struct around.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
