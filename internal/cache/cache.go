// Package cache stores optimizer results keyed by a fingerprint of the run
// request.
package cache

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/iwvelando/budget-optimizer/internal/optimizer"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

const keyPrefix = "budget-optimizer:result:v1:"

// Repository is a string key/value store for encoded results.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key fingerprints a run request. Requests that encode identically share a key.
func Key(req optimizer.Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	return fmt.Sprintf("%s%016x", keyPrefix, xxhash.Sum64(data)), nil
}

// GetResult loads and decodes a cached result.
func GetResult(ctx context.Context, repo Repository, key string) (*optimization.Result, bool, error) {
	data, ok, err := repo.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var result optimization.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, true, nil
}

// PutResult encodes and stores a result.
func PutResult(ctx context.Context, repo Repository, key string, result *optimization.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return repo.Set(ctx, key, data)
}
