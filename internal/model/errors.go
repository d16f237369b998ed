package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownEvent    = errors.New("unknown event kind")

	// Registration errors
	ErrInvalidDetailsFormat   = errors.New("invalid details format")
	ErrIncompleteRegistration = errors.New("registration is missing required fields")
	ErrInvalidCountryTable    = errors.New("invalid country table")

	// Store errors
	ErrSnapshotExists = errors.New("snapshot already exists")
	ErrStoreLocked    = errors.New("store is locked by another process")
)
