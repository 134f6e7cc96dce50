package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const gameIDLength = 8

// GenerateGameID - generates a short game id a player can share with an opponent.
func GenerateGameID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	return strings.ToUpper(id[:gameIDLength])
}

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
