// Package repository implements user storage over MySQL with an optional
// Redis read cache. Sentinel errors defined here let handlers distinguish
// failure scenarios without inspecting driver errors: ErrUserExists signals
// a unique-index conflict on email or username, ErrUserNotFound signals that
// no active user matched a lookup.
package repository

import "errors"

// ErrUserExists is returned when an insert or update collides with the
// unique email or username index. Handlers translate this into an HTTP 400
// UserAlreadyExists response.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when no active user matches the lookup.
// Handlers translate this into 404 or 401 depending on the operation.
var ErrUserNotFound = errors.New("user not found")
