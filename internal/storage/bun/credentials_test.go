package bunrepo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/waylink/go-deeplink/pkg/interfaces/credstore"
)

func setupCredentialDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.DriverName(), "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	_, err = db.NewCreateTable().Model((*credentialRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	db := setupCredentialDB(t)
	store := NewCredentialStore(db)
	ctx := context.Background()

	rec := credstore.Record{
		Environment: "live",
		Name:        "api_key",
		Version:     time.Now().UTC().Format(time.RFC3339Nano),
		Cipher:      []byte("cipher"),
		Nonce:       []byte("nonce"),
		Metadata:    map[string]any{"fingerprint": "ab12"},
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetLatest(ctx, "live", "api_key")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if string(got.Cipher) != "cipher" {
		t.Fatalf("unexpected cipher %s", got.Cipher)
	}

	list, err := store.List(ctx, "live", "api_key")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}

	if err := store.Delete(ctx, "live", "api_key"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetLatest(ctx, "live", "api_key"); err == nil {
		t.Fatalf("expected not found after delete")
	}
}
