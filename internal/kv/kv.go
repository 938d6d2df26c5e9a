// Package kv provides the durable key-value contract the persistence layer
// writes through: synchronous get/set/delete of opaque blobs under string
// keys, with file, sqlite and no-op backends.
package kv

import "context"

// Store is a synchronous key-value backend. One store instance owns its
// durable state exclusively; there is no cross-process write coordination.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Null is the no-op backend for environments without durable storage: reads
// find nothing, writes silently succeed. It lets the core run where
// persistence is unavailable without failing.
type Null struct{}

func NewNull() Null { return Null{} }

func (Null) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Null) Set(context.Context, string, []byte) error         { return nil }
func (Null) Delete(context.Context, string) error              { return nil }
func (Null) Close() error                                      { return nil }
