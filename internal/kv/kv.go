// Package kv provides the durable key-value store used to persist
// application state as namespaced JSON documents. The in-memory
// implementation is the test/dev default; Redis backs real deployments
// without Postgres.
package kv

import "context"

// Store is a minimal durable key-value contract
type Store interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, overwriting any previous value
	Set(ctx context.Context, key, value string) error

	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
}
