package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Errors
var (
	ErrAdminDisabled = errors.New("admin access is not configured")
	ErrInvalidToken  = errors.New("invalid admin token")
)

// Config holds configuration for the auth service
type Config struct {
	// AdminToken grants access to admin endpoints; empty disables them
	AdminToken string
	// Cost is the bcrypt cost used to hash the token
	Cost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Cost: bcrypt.DefaultCost,
	}
}

// Service verifies admin bearer tokens.
// Only a bcrypt hash of the configured token is kept in memory.
type Service struct {
	hash []byte
}

// New creates a new auth Service
func New(cfg Config) (*Service, error) {
	if cfg.AdminToken == "" {
		return &Service{}, nil
	}
	if cfg.Cost == 0 {
		cfg.Cost = DefaultConfig().Cost
	}

	hash, err := bcrypt.GenerateFromPassword(digest(cfg.AdminToken), cfg.Cost)
	if err != nil {
		return nil, err
	}
	return &Service{hash: hash}, nil
}

// Enabled reports whether an admin token is configured
func (s *Service) Enabled() bool {
	return len(s.hash) > 0
}

// ValidateToken checks a presented bearer token
func (s *Service) ValidateToken(token string) error {
	if !s.Enabled() {
		return ErrAdminDisabled
	}
	if token == "" {
		return ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, digest(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// digest keeps tokens of any length under bcrypt's 72 byte input limit
func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}
