package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/waylink/go-deeplink/pkg/domain"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// LinkActivityRepository persists the on-device journal of delivered
// deep-link events.
type LinkActivityRepository interface {
	Repository[domain.LinkActivity]
	ListByStatus(ctx context.Context, status string, opts ListOptions) (ListResult[domain.LinkActivity], error)
	ListBySource(ctx context.Context, source string, opts ListOptions) (ListResult[domain.LinkActivity], error)
	CountByStatus(ctx context.Context, status string) (int, error)
	MarkHandled(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
