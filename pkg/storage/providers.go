package storage

import (
	"context"
	"database/sql"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	bunrepo "github.com/waylink/go-deeplink/internal/storage/bun"
	"github.com/waylink/go-deeplink/internal/storage/memory"
	"github.com/waylink/go-deeplink/pkg/credentials"
	"github.com/waylink/go-deeplink/pkg/interfaces/credstore"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
)

// Providers exposes the persistence surface needed by services.
type Providers struct {
	Activities  store.LinkActivityRepository
	Credentials credstore.Store
	Transaction store.TransactionManager
}

type Option func(*Providers)

// WithCredentialStore replaces the default credential store, e.g. to back
// it with a platform keychain.
func WithCredentialStore(cs credstore.Store) Option {
	return func(p *Providers) {
		p.Credentials = cs
	}
}

// NewMemoryProviders returns repositories backed by in-memory maps.
func NewMemoryProviders(opts ...Option) Providers {
	providers := Providers{
		Activities:  memory.NewLinkActivityRepository(),
		Credentials: credentials.NewMemoryStore(),
		Transaction: &store.NopTransactionManager{},
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewBunProviders wires Bun-backed repositories using go-repository-bun.
// The caller is responsible for creating the *bun.DB instance (potentially
// via go-persistence-bun) and managing its lifecycle.
func NewBunProviders(db *bun.DB, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel(bunrepo.Models()...)

	providers := Providers{
		Activities:  bunrepo.NewLinkActivityRepository(db),
		Credentials: bunrepo.NewCredentialStore(db),
		Transaction: &bunTxManager{db: db},
	}

	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// EnsureSchema creates the backing tables directly. On-device SQLite files
// have no migration runner, so the schema is applied at open time.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range bunrepo.Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}

type bunTxManager struct {
	db *bun.DB
}

func (m *bunTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx)
	})
}
