package pkg

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/google/uuid"
)

// GenerateNewSessionID - generates a new unique player session ID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateGameID - generates a short numeric identifier for a game. A failing
// randomness source falls back to a session-style ID, never an empty string.
func GenerateGameID() string {
	return gameID(rand.Reader)
}

func gameID(source io.Reader) string {
	n, err := rand.Int(source, big.NewInt(99999999))
	if err != nil {
		return uuid.NewString()
	}

	return n.String()
}
