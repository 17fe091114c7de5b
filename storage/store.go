package storage

import "context"

// FileStore is a read-only view of an object store holding the hackathon
// data files (dataset description and label records).
type FileStore interface {
	Get(ctx context.Context, key string) ([]byte, error)

	List(ctx context.Context, prefix string) ([]string, error)
}
