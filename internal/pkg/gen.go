package pkg

import (
	"crypto/rand"
	"encoding/base64"
)

const gameIDBytes = 6

// GenerateGameID - generates a short url-safe game id.
func GenerateGameID() string {
	b := make([]byte, gameIDBytes)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(b)
}
