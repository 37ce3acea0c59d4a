package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier for auctions, bids and users
func GenerateID() string {
	return uuid.New().String()
}
