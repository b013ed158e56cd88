// Package cache stores encoded financing results keyed by the request that
// produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sq3/hausfinanzierungs-dashboard/pkg/financing"
)

// KeyPrefix namespaces result keys in shared stores.
const KeyPrefix = "hausfinanzierung:financing:"

// Cache stores encoded results. A miss and a failed lookup look the same to
// the caller.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives the cache key of a sanitized request.
func Key(req financing.Request) (string, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}
