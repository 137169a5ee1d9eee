package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID generates a new random id for an expiration rule
func GenerateID() string {
	uuidStr := uuid.NewString()
	uuidStr = strings.ReplaceAll(uuidStr, "-", "")
	return uuidStr
}
