package credstore

import "context"

// Record represents an encrypted credential entry persisted by a store.
// Environment is the key environment segment (live or test); Name is the
// logical credential name, usually "api_key".
type Record struct {
	Environment string
	Name        string
	Version     string
	Cipher      []byte
	Nonce       []byte
	Metadata    map[string]any
	CreatedAt   any
	UpdatedAt   any
	DeletedAt   any
}

// Store defines persistence operations for credential records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	GetLatest(ctx context.Context, environment, name string) (Record, error)
	GetVersion(ctx context.Context, environment, name, version string) (Record, error)
	Delete(ctx context.Context, environment, name string) error
	List(ctx context.Context, environment, name string) ([]Record, error)
}
