package bunrepo

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
)

// LinkActivityRepository persists journal rows in a relational store.
type LinkActivityRepository struct {
	base baseRepository[domain.LinkActivity]
}

var _ store.LinkActivityRepository = (*LinkActivityRepository)(nil)

func NewLinkActivityRepository(db *bun.DB) *LinkActivityRepository {
	handlers := repository.ModelHandlers[*domain.LinkActivity]{
		NewRecord:          func() *domain.LinkActivity { return &domain.LinkActivity{} },
		GetID:              func(a *domain.LinkActivity) uuid.UUID { return a.ID },
		SetID:              func(a *domain.LinkActivity, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(a *domain.LinkActivity) string { return a.ID.String() },
	}
	return &LinkActivityRepository{
		base: newBaseRepository[domain.LinkActivity](db, handlers, func(a *domain.LinkActivity) *domain.RecordMeta { return &a.RecordMeta }),
	}
}

func (r *LinkActivityRepository) Create(ctx context.Context, activity *domain.LinkActivity) error {
	return r.base.create(ctx, activity)
}

func (r *LinkActivityRepository) Update(ctx context.Context, activity *domain.LinkActivity) error {
	return r.base.update(ctx, activity)
}

func (r *LinkActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LinkActivity, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *LinkActivityRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.LinkActivity], error) {
	return r.base.list(ctx, opts)
}

func (r *LinkActivityRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *LinkActivityRepository) ListByStatus(ctx context.Context, status string, opts store.ListOptions) (store.ListResult[domain.LinkActivity], error) {
	return r.base.listMatching(ctx, opts, withStatus(status))
}

func (r *LinkActivityRepository) ListBySource(ctx context.Context, source string, opts store.ListOptions) (store.ListResult[domain.LinkActivity], error) {
	return r.base.listMatching(ctx, opts, withSource(source))
}

func (r *LinkActivityRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	count, err := r.base.db.
		NewSelect().
		Model((*domain.LinkActivity)(nil)).
		Where("status = ?", status).
		Where("deleted_at IS NULL").
		Count(ctx)
	return count, mapError(err)
}

func (r *LinkActivityRepository) MarkHandled(ctx context.Context, id uuid.UUID, at time.Time) error {
	record, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	record.Status = domain.ActivityStatusHandled
	record.HandledAt = at.UTC()
	return r.base.update(ctx, record)
}

// DeleteOlderThan hard-deletes rows regardless of soft-delete state. It
// backs retention purges, so rows must actually leave the device.
func (r *LinkActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.base.db.
		NewDelete().
		Model((*domain.LinkActivity)(nil)).
		Where("created_at < ?", cutoff).
		ForceDelete().
		Exec(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
