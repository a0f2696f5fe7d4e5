package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/waylink/go-deeplink/pkg/deeplink"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/capture"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/store"
	"github.com/waylink/go-deeplink/pkg/journal"
	"github.com/waylink/go-deeplink/pkg/resolver/static"
)

// The demo runs against a canned resolver so it works offline. Swap the
// Client option for the default HTTP client and a real key to hit the live
// service.
func main() {
	relay := capture.NewRelay()
	relay.SetInitialURL("https://wayl.ink/cold-start")

	service := static.New(
		static.WithLink("https://wayl.ink/cold-start", map[string]any{
			"linkId":      "lnk_cold",
			"destination": "/onboarding",
			"matchType":   "exact",
		}),
		static.WithLink("https://wayl.ink/promo", map[string]any{
			"linkId":       "lnk_promo",
			"destination":  "/promo/summer",
			"customParams": map[string]any{"campaign": "summer"},
		}),
		static.WithDeferred(map[string]any{
			"linkId":      "lnk_deferred",
			"destination": "/invite",
			"isDeferred":  true,
		}),
		static.WithAttribution(map[string]any{
			"linkId":          "lnk_deferred",
			"installId":       "ins_demo",
			"isDeferred":      true,
			"matchType":       "probabilistic",
			"matchConfidence": 0.87,
		}),
	)

	module, err := deeplink.NewModule(deeplink.ModuleOptions{
		Logger: logger.New(),
		Source: relay,
		Client: service,
	})
	if err != nil {
		log.Fatalf("module: %v", err)
	}
	client := module.Client()
	ctx := context.Background()

	unsubscribe, err := client.Subscribe(func(evt domain.DeepLinkEvent) {
		if link, ok := evt.Link(); ok {
			fmt.Printf("push event: %s -> %s\n", link.LinkID, link.Destination)
			return
		}
		evtErr, _ := evt.Err()
		fmt.Printf("push event failed: %v\n", evtErr)
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	if err := client.Configure(deeplink.Config{
		APIKey: "wl_test_0123456789abcdefghijklmnopqrstuv",
	}); err != nil {
		log.Fatalf("configure: %v", err)
	}
	waitAccepted(client)

	initial, err := client.InitialLink(ctx)
	if err != nil {
		log.Fatalf("initial link: %v", err)
	}
	if initial != nil {
		fmt.Printf("cold start: %s -> %s\n", initial.LinkID, initial.Destination)
	}

	link, err := client.ResolveLink(ctx, "https://wayl.ink/promo")
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}
	fmt.Printf("resolved: %s -> %s params=%v\n", link.LinkID, link.Destination, link.CustomParams)

	deferred, err := client.CheckDeferredLink(ctx)
	if err != nil {
		log.Fatalf("deferred: %v", err)
	}
	if deferred != nil {
		fmt.Printf("deferred match: %s -> %s\n", deferred.LinkID, deferred.Destination)
	}

	attribution, err := client.Attribution(ctx)
	if err != nil {
		log.Fatalf("attribution: %v", err)
	}
	if attribution != nil {
		fmt.Printf("attribution: link=%s type=%s confidence=%.2f\n",
			attribution.LinkID, attribution.MatchType, attribution.MatchConfidence)
	}

	// Pushes resolve asynchronously; give the event a moment to settle.
	relay.Emit("https://wayl.ink/promo")
	time.Sleep(200 * time.Millisecond)

	rows, err := module.Journal().List(ctx, store.ListOptions{}, journal.ListFilters{})
	if err != nil {
		log.Fatalf("journal: %v", err)
	}
	fmt.Printf("journal holds %d activities:\n", len(rows.Items))
	for _, row := range rows.Items {
		fmt.Printf("  [%s] %s %s -> %s\n", row.Source, row.Status, row.URL, row.Destination)
	}
}

func waitAccepted(client *deeplink.Client) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status := client.ConfigurationStatus()
		switch status.Phase {
		case deeplink.PhaseAccepted:
			return
		case deeplink.PhaseRejected:
			log.Fatalf("configuration rejected: %v", status.Err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	log.Fatal("configuration never settled")
}
