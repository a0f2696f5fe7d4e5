package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
)

// ListFilters refine journal queries beyond pagination.
type ListFilters struct {
	Status string
	Source string
	Before time.Time
}

// Dependencies wires the repository and maintenance hooks into the service.
type Dependencies struct {
	Repository  store.LinkActivityRepository
	Transaction store.TransactionManager
	Logger      logger.Logger
}

// Service records settled deep-link events as on-device activity rows and
// answers queries over them. It plugs into the delivery path as a sink, so
// recording failures surface in logs rather than breaking listeners.
type Service struct {
	repo   store.LinkActivityRepository
	tx     store.TransactionManager
	logger logger.Logger
	now    func() time.Time
}

var _ sink.Sink = (*Service)(nil)

var (
	errRepositoryRequired = errors.New("journal: repository is required")
)

// NewService constructs the journal service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Transaction == nil {
		deps.Transaction = &store.NopTransactionManager{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		repo:   deps.Repository,
		tx:     deps.Transaction,
		logger: deps.Logger,
		now:    time.Now,
	}, nil
}

// Deliver implements sink.Sink.
func (s *Service) Deliver(ctx context.Context, delivery sink.Delivery) error {
	_, err := s.Record(ctx, delivery)
	return err
}

// Record persists one settled delivery and returns the stored row.
func (s *Service) Record(ctx context.Context, delivery sink.Delivery) (*domain.LinkActivity, error) {
	activity := domain.ActivityFromEvent(delivery.Source, delivery.URL, delivery.Event)
	if activity.Status == "" {
		return nil, errors.New("journal: delivery carries no settled event")
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, err
	}
	s.logger.Debug("journal entry recorded",
		logger.Field{Key: "id", Value: activity.ID.String()},
		logger.Field{Key: "source", Value: activity.Source},
		logger.Field{Key: "status", Value: activity.Status},
	)
	return activity, nil
}

// List returns journal rows matching the supplied filters, newest last.
func (s *Service) List(ctx context.Context, opts store.ListOptions, filters ListFilters) (store.ListResult[domain.LinkActivity], error) {
	var (
		result store.ListResult[domain.LinkActivity]
		err    error
	)
	switch {
	case filters.Status != "":
		result, err = s.repo.ListByStatus(ctx, filters.Status, opts)
	case filters.Source != "":
		result, err = s.repo.ListBySource(ctx, filters.Source, opts)
	default:
		result, err = s.repo.List(ctx, opts)
	}
	if err != nil {
		return store.ListResult[domain.LinkActivity]{}, err
	}

	items := make([]domain.LinkActivity, 0, len(result.Items))
	for _, item := range result.Items {
		if filters.Status != "" && item.Status != filters.Status {
			continue
		}
		if filters.Source != "" && item.Source != filters.Source {
			continue
		}
		if !filters.Before.IsZero() && !item.CreatedAt.Before(filters.Before) {
			continue
		}
		items = append(items, item)
	}
	return store.ListResult[domain.LinkActivity]{Items: items, Total: len(items)}, nil
}

// Get returns a single journal row.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.LinkActivity, error) {
	return s.repo.GetByID(ctx, id)
}

// MarkHandled records that the application acted on a journal entry.
func (s *Service) MarkHandled(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkHandled(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.logger.Debug("journal entry handled", logger.Field{Key: "id", Value: id.String()})
	return nil
}

// CountPending returns the number of resolved rows not yet marked handled.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, domain.ActivityStatusResolved)
}

// Purge removes rows older than the retention window and reports how many
// were deleted.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, errors.New("journal: retention must be positive")
	}
	cutoff := s.now().UTC().Add(-retention)
	var deleted int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("journal purged",
			logger.Field{Key: "deleted", Value: deleted},
			logger.Field{Key: "cutoff", Value: cutoff},
		)
	}
	return deleted, nil
}
