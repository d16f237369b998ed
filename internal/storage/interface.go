package storage

import (
	"context"

	"github.com/mcoot/tourneybot/internal/model"
)

// Storage defines the interface for conversation session persistence
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, userID model.UserID) (*model.Session, error)
	DeleteSession(ctx context.Context, userID model.UserID) error
}
