package model

import "time"

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column. The json tags are omitted here because
// these structs are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Version is a UUID that is regenerated whenever the user's email or password
// changes. Issued tokens embed the version current at issuance time, which
// lets the service cut off token renewal after a credential change.
//
// Fields:
//
//	ID           – primary key (UUID).
//	Version      – rotating token-invalidation identifier (UUID).
//	Email        – unique email address.
//	Username     – unique display name.
//	PasswordHash – bcrypt hashed password.
//	Avatar       – optional avatar URL; empty when unset.
//	IsActive     – whether the account is active; inactive users are
//	               excluded from every lookup.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Version      string    // users.version
	Email        string    // users.email
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Avatar       string    // users.avatar (nullable, scanned as empty string)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserDraft carries the fields required to insert a new user. The repository
// assigns ID, Version and timestamps; IsActive defaults to true.
type UserDraft struct {
	Email        string
	Username     string
	PasswordHash string
}
