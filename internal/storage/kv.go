package storage

import "context"

// KV is the durable key-value contract the engine persists through. It is
// treated as durable but possibly slow; callers keep their own in-memory
// state authoritative and write through best-effort.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	RemoveAll(ctx context.Context, keys []string) error
}
