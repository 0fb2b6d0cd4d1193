package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "bhavapi:revoked:"

// RevocationRepository keeps hashes of logged out tokens in Redis until they expire
type RevocationRepository struct {
	client *redis.Client
}

// NewRevocationRepository creates a new revocation store
func NewRevocationRepository(client *redis.Client) *RevocationRepository {
	return &RevocationRepository{client: client}
}

// Revoke marks tokenHash as revoked for ttl
func (r *RevocationRepository) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedTokenKeyPrefix+tokenHash, "1", ttl).Err()
}

// IsRevoked reports whether tokenHash was revoked
func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	err := r.client.Get(ctx, revokedTokenKeyPrefix+tokenHash).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
