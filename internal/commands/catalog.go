package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	ResolveLink     command.Commander[ResolveLink]
	CheckDeferred   command.Commander[CheckDeferred]
	SyncAttribution command.Commander[SyncAttribution]
	MarkHandled     command.Commander[MarkHandled]
	PurgeJournal    command.Commander[PurgeJournal]
}

// LifecycleService is the slice of the lifecycle coordinator the commands
// drive.
type LifecycleService interface {
	ResolveLink(ctx context.Context, url string) (*domain.ResolvedLink, error)
	CheckDeferredLink(ctx context.Context) (*domain.ResolvedLink, error)
	Attribution(ctx context.Context) (*domain.AttributionResult, error)
}

// JournalService is the slice of the journal the commands drive.
type JournalService interface {
	MarkHandled(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, retention time.Duration) (int, error)
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Lifecycle LifecycleService
	Journal   JournalService
	Logger    logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Lifecycle == nil {
		return nil, errors.New("commands: lifecycle service is required")
	}
	if deps.Journal == nil {
		return nil, errors.New("commands: journal service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		ResolveLink:     resolveLinkCommand{svc: deps.Lifecycle},
		CheckDeferred:   checkDeferredCommand{svc: deps.Lifecycle},
		SyncAttribution: syncAttributionCommand{svc: deps.Lifecycle, logger: deps.Logger},
		MarkHandled:     markHandledCommand{journal: deps.Journal},
		PurgeJournal:    purgeJournalCommand{journal: deps.Journal},
	}, nil
}

// ResolveLink requests a single on-demand URL resolution. The settled event
// reaches subscribers and sinks; the command itself only reports failure.
type ResolveLink struct {
	URL string `json:"url"`
}

type resolveLinkCommand struct {
	svc LifecycleService
}

func (c resolveLinkCommand) Execute(ctx context.Context, msg ResolveLink) error {
	url := strings.TrimSpace(msg.URL)
	if url == "" {
		return errors.New("commands: url is required")
	}
	_, err := c.svc.ResolveLink(ctx, url)
	return err
}

// CheckDeferred triggers the install-time deferred link check.
type CheckDeferred struct{}

type checkDeferredCommand struct {
	svc LifecycleService
}

func (c checkDeferredCommand) Execute(ctx context.Context, msg CheckDeferred) error {
	_, err := c.svc.CheckDeferredLink(ctx)
	return err
}

// SyncAttribution refreshes install attribution from the resolution service.
type SyncAttribution struct{}

type syncAttributionCommand struct {
	svc    LifecycleService
	logger logger.Logger
}

func (c syncAttributionCommand) Execute(ctx context.Context, msg SyncAttribution) error {
	result, err := c.svc.Attribution(ctx)
	if err != nil {
		return err
	}
	if result == nil {
		c.logger.Debug("attribution sync found no match")
		return nil
	}
	c.logger.Debug("attribution synced",
		logger.Field{Key: "link_id", Value: result.LinkID},
		logger.Field{Key: "match_type", Value: string(result.MatchType)},
	)
	return nil
}

// MarkHandled flags a journal entry as processed by the application.
type MarkHandled struct {
	ActivityID string `json:"activity_id"`
}

type markHandledCommand struct {
	journal JournalService
}

func (c markHandledCommand) Execute(ctx context.Context, msg MarkHandled) error {
	id, err := uuid.Parse(strings.TrimSpace(msg.ActivityID))
	if err != nil {
		return errors.New("commands: activity id must be a uuid")
	}
	return c.journal.MarkHandled(ctx, id)
}

// PurgeJournal deletes journal entries older than the retention window.
type PurgeJournal struct {
	RetentionDays int `json:"retention_days"`
}

type purgeJournalCommand struct {
	journal JournalService
}

func (c purgeJournalCommand) Execute(ctx context.Context, msg PurgeJournal) error {
	if msg.RetentionDays <= 0 {
		return errors.New("commands: retention days must be positive")
	}
	_, err := c.journal.Purge(ctx, time.Duration(msg.RetentionDays)*24*time.Hour)
	return err
}
