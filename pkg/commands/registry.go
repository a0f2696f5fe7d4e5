package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/waylink/go-deeplink/internal/commands"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
)

// Re-export request types so consumers need not import internal packages.
type (
	ResolveLink     = internalcommands.ResolveLink
	CheckDeferred   = internalcommands.CheckDeferred
	SyncAttribution = internalcommands.SyncAttribution
	MarkHandled     = internalcommands.MarkHandled
	PurgeJournal    = internalcommands.PurgeJournal

	LifecycleService = internalcommands.LifecycleService
	JournalService   = internalcommands.JournalService
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog         *internalcommands.Catalog
	ResolveLink     command.Commander[ResolveLink]
	CheckDeferred   command.Commander[CheckDeferred]
	SyncAttribution command.Commander[SyncAttribution]
	MarkHandled     command.Commander[MarkHandled]
	PurgeJournal    command.Commander[PurgeJournal]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Lifecycle LifecycleService
	Journal   JournalService
	Logger    logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Lifecycle: deps.Lifecycle,
		Journal:   deps.Journal,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:         catalog,
		ResolveLink:     catalog.ResolveLink,
		CheckDeferred:   catalog.CheckDeferred,
		SyncAttribution: catalog.SyncAttribution,
		MarkHandled:     catalog.MarkHandled,
		PurgeJournal:    catalog.PurgeJournal,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.ResolveLink,
		r.CheckDeferred,
		r.SyncAttribution,
		r.MarkHandled,
		r.PurgeJournal,
	}
}
