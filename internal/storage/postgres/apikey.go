package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront/internal/domain/auth"
)

const findAPIKeyByHashSQL = `SELECT id, name, key_hash FROM api_keys WHERE key_hash = $1`

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository implements auth.Repository backed by PostgreSQL.
type APIKeyRepository struct {
	store *Store
}

// NewAPIKeyRepository returns an APIKeyRepository using the given store.
func NewAPIKeyRepository(store *Store) *APIKeyRepository {
	return &APIKeyRepository{store: store}
}

// FindByHash looks up an API key by its HMAC-SHA256 hash.
func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKey, error) {
	var k auth.APIKey
	err := r.store.db(ctx).QueryRow(ctx, findAPIKeyByHashSQL, hash).Scan(&k.ID, &k.Name, &k.KeyHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, errors.Wrap(err, "find api key")
	}
	return &k, nil
}
