package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/waylink/go-deeplink/internal/journal"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
)

// Re-export commonly used types so callers don't depend on the internal package.
type ListFilters = journal.ListFilters

// Service exposes the on-device activity journal to consumers. It doubles as
// an event sink so settled events can be recorded automatically.
type Service struct {
	internal *journal.Service
}

// Dependencies wires the journal repository.
type Dependencies struct {
	Repository  store.LinkActivityRepository
	Transaction store.TransactionManager
	Logger      logger.Logger
}

var errServiceNotInitialised = errors.New("journal: service not initialised")

var _ sink.Sink = (*Service)(nil)

// New constructs the façade.
func New(deps Dependencies) (*Service, error) {
	internalSvc, err := journal.NewService(journal.Dependencies{
		Repository:  deps.Repository,
		Transaction: deps.Transaction,
		Logger:      deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Service{internal: internalSvc}, nil
}

// Deliver implements sink.Sink.
func (s *Service) Deliver(ctx context.Context, delivery sink.Delivery) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	return s.internal.Deliver(ctx, delivery)
}

// Record persists one settled event and returns the stored entry.
func (s *Service) Record(ctx context.Context, delivery sink.Delivery) (*domain.LinkActivity, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Record(ctx, delivery)
}

// List pages through journal entries.
func (s *Service) List(ctx context.Context, opts store.ListOptions, filters ListFilters) (store.ListResult[domain.LinkActivity], error) {
	if s == nil || s.internal == nil {
		return store.ListResult[domain.LinkActivity]{}, errServiceNotInitialised
	}
	return s.internal.List(ctx, opts, filters)
}

// Get fetches a single journal entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.LinkActivity, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Get(ctx, id)
}

// MarkHandled flags an entry as processed by the application.
func (s *Service) MarkHandled(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	return s.internal.MarkHandled(ctx, id)
}

// CountPending reports entries resolved but not yet handled.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	if s == nil || s.internal == nil {
		return 0, errServiceNotInitialised
	}
	return s.internal.CountPending(ctx)
}

// Purge deletes entries older than the retention window and reports how many
// were removed.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int, error) {
	if s == nil || s.internal == nil {
		return 0, errServiceNotInitialised
	}
	return s.internal.Purge(ctx, retention)
}
