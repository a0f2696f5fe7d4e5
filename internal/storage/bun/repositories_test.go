package bunrepo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
)

func setupSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.DriverName(), "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	models := []any{
		(*domain.LinkActivity)(nil),
	}
	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		if err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func TestLinkActivityRepositoryBun(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLinkActivityRepository(db)
	ctx := context.Background()

	resolved := &domain.LinkActivity{
		Source:      domain.ActivitySourcePush,
		URL:         "https://wayl.ink/promo",
		LinkID:      "lnk_1",
		Destination: "https://shop.example.com/promo",
		Status:      domain.ActivityStatusResolved,
	}
	manual := &domain.LinkActivity{
		Source: domain.ActivitySourceManual,
		LinkID: "lnk_2",
		Status: domain.ActivityStatusResolved,
	}
	failed := &domain.LinkActivity{
		Source:    domain.ActivitySourcePush,
		Status:    domain.ActivityStatusFailed,
		ErrorKind: "E_NETWORK_ERROR",
		ErrorText: "socket closed",
	}
	for _, activity := range []*domain.LinkActivity{resolved, manual, failed} {
		if err := repo.Create(ctx, activity); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, resolved.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.LinkID != "lnk_1" {
		t.Fatalf("unexpected link id %s", got.LinkID)
	}

	list, err := repo.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 3 {
		t.Fatalf("expected total 3, got %d", list.Total)
	}

	byStatus, err := repo.ListByStatus(ctx, domain.ActivityStatusResolved, store.ListOptions{})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if byStatus.Total != 2 {
		t.Fatalf("expected 2 resolved entries, got %d", byStatus.Total)
	}

	bySource, err := repo.ListBySource(ctx, domain.ActivitySourcePush, store.ListOptions{})
	if err != nil {
		t.Fatalf("list by source: %v", err)
	}
	if bySource.Total != 2 {
		t.Fatalf("expected 2 push entries, got %d", bySource.Total)
	}

	count, err := repo.CountByStatus(ctx, domain.ActivityStatusFailed)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 failed entry, got %d", count)
	}

	handledAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.MarkHandled(ctx, resolved.ID, handledAt); err != nil {
		t.Fatalf("mark handled: %v", err)
	}
	got, err = repo.GetByID(ctx, resolved.ID)
	if err != nil {
		t.Fatalf("get after mark handled: %v", err)
	}
	if got.Status != domain.ActivityStatusHandled {
		t.Fatalf("expected handled status, got %s", got.Status)
	}
	if !got.HandledAt.Equal(handledAt) {
		t.Fatalf("expected handled timestamp recorded, got %v", got.HandledAt)
	}

	if err := repo.SoftDelete(ctx, failed.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	list, err = repo.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list after soft delete: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected total 2 after soft delete, got %d", list.Total)
	}

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected purge to remove 3 rows, got %d", deleted)
	}
	list, err = repo.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list after purge: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected empty journal after purge, got %d", list.Total)
	}
}
