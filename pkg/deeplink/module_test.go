package deeplink

import (
	"context"
	"testing"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
	"github.com/waylink/go-deeplink/pkg/journal"
	"github.com/waylink/go-deeplink/pkg/resolver/static"
	"github.com/waylink/go-deeplink/pkg/storage"
)

func TestModuleConstruction(t *testing.T) {
	module, err := NewModule(ModuleOptions{
		Logger:  &logger.Nop{},
		Storage: storage.NewMemoryProviders(),
		Client:  static.New(),
	})
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	if module.Client() == nil {
		t.Fatalf("expected client")
	}
	if module.Commands() == nil {
		t.Fatalf("expected commands registry")
	}
	if module.Journal() == nil || module.Sinks() == nil {
		t.Fatalf("expected journal and sink registry")
	}
	if got := module.Config().APIEndpoint; got != "https://api.wayl.ink" {
		t.Fatalf("expected defaulted endpoint, got %q", got)
	}
}

func TestModuleResolutionReachesJournal(t *testing.T) {
	module, err := NewModule(ModuleOptions{
		Logger: &logger.Nop{},
		Client: static.New(static.WithLink("https://wayl.ink/launch", map[string]any{
			"linkId":      "lnk_launch",
			"destination": "/launch",
		})),
	})
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	client := module.Client()
	ctx := context.Background()

	if err := client.Configure(Config{APIKey: testKey}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	waitPhase(t, client, PhaseAccepted)

	link, err := client.ResolveLink(ctx, "https://wayl.ink/launch")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if link.Destination != "/launch" {
		t.Fatalf("unexpected destination %q", link.Destination)
	}

	// The journal sink is on by default, so the resolution shows up as an
	// activity row.
	rows, err := module.Journal().List(ctx, store.ListOptions{Limit: 10}, journal.ListFilters{
		Source: domain.ActivitySourceManual,
	})
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	if len(rows.Items) != 1 || rows.Items[0].LinkID != "lnk_launch" {
		t.Fatalf("unexpected journal rows: %+v", rows.Items)
	}

	pending, err := module.Journal().CountPending(ctx)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected one pending activity, got %d", pending)
	}
}
