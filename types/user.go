package types

import "time"

// User represents an account that can sign in to the admin panel.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user (a UUID).
	ID string `json:"id" db:"id"`

	// Email is the unique login name of the user.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the panel.
	// Only admins may sign in to the panel or manage other users.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the bcrypt representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Principal returns the identity a token issued for this user asserts.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Principal is the identity asserted by a verified token.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
