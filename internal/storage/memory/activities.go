package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
)

// LinkActivityRepository keeps the journal in process memory.
type LinkActivityRepository struct {
	base memoryRepo[domain.LinkActivity]
}

var _ store.LinkActivityRepository = (*LinkActivityRepository)(nil)

func NewLinkActivityRepository() *LinkActivityRepository {
	return &LinkActivityRepository{
		base: newMemoryRepo(func(a *domain.LinkActivity) *domain.RecordMeta { return &a.RecordMeta }),
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
	return r.base.listWhere(ctx, opts, func(a *domain.LinkActivity) bool {
		return a.Status == status
	})
}

func (r *LinkActivityRepository) ListBySource(ctx context.Context, source string, opts store.ListOptions) (store.ListResult[domain.LinkActivity], error) {
	return r.base.listWhere(ctx, opts, func(a *domain.LinkActivity) bool {
		return a.Source == source
	})
}

func (r *LinkActivityRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	return r.base.count(func(a *domain.LinkActivity) bool {
		return a.Status == status
	}), nil
}

func (r *LinkActivityRepository) MarkHandled(ctx context.Context, id uuid.UUID, at time.Time) error {
	activity, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	activity.Status = domain.ActivityStatusHandled
	activity.HandledAt = at.UTC()
	return r.base.update(ctx, activity)
}

func (r *LinkActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := r.base.deleteWhere(func(a *domain.LinkActivity) bool {
		return a.CreatedAt.Before(cutoff)
	})
	return deleted, nil
}
