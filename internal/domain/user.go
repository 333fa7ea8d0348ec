package domain

import "time"

// User represents a chat user allowed to reach the session
type User struct {
	UserID     int64
	Authorized bool
	LastSeenAt time.Time
	CreatedAt  time.Time
}

// UserState represents what the chat expects from the next text message
type UserState string

const (
	StateIdle         UserState = "idle"
	StateWaitingEdit  UserState = "waiting_edit"
	StateWaitingWords UserState = "waiting_words"
)

// StateData holds the chat input mode of one user
type StateData struct {
	State UserState
}
