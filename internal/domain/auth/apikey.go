package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no API key matches the given hash.
var ErrNotFound = errors.New("api key not found")

// APIKey holds the identity data for a stored admin API key. Only the
// HMAC-SHA256 hash of the key ever touches the database.
type APIKey struct {
	ID      string
	Name    string
	KeyHash string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKey, error)
}
