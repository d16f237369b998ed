package model

import "time"

// UserID identifies a chat participant across transports
type UserID string

// SessionState is the position of a user in the registration dialogue
type SessionState string

const (
	StateAwaitingCountry       SessionState = "awaiting_country"
	StateAwaitingDetails       SessionState = "awaiting_details"
	StateAwaitingRuleAgreement SessionState = "awaiting_rule_agreement"
	StateCompleted             SessionState = "completed" // Terminal; the session is discarded
)

// Session holds one user's in-progress registration
type Session struct {
	UserID    UserID
	State     SessionState
	Country   string
	Username  string
	UID       string
	Level     string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Registration assembles the record collected so far
func (s *Session) Registration() Registration {
	return Registration{
		Country:  s.Country,
		Username: s.Username,
		UID:      s.UID,
		Level:    s.Level,
	}
}
