package redis

import (
	"fmt"

	"github.com/mcoot/tourneybot/internal/model"
)

// Key prefix for all bot data
const keyPrefix = "tourneybot"

// sessionKey returns the Redis key for a user's conversation session
func sessionKey(userID model.UserID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, userID)
}
