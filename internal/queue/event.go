// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// UserRegisteredEvent is published after a successful registration. It
// carries enough information for downstream consumers to notify, audit, or
// trigger analytics without querying the identity database.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
}

// UserRegisteredQueue is the durable queue both publisher and consumer use.
const UserRegisteredQueue = "user.registered"
