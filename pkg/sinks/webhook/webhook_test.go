package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
)

func TestWebhookSinkPostsSignedPayload(t *testing.T) {
	var (
		gotSignature string
		gotBody      []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	s := New(nil, WithConfig(Config{URL: server.URL, Secret: "wh_secret"}))

	delivery := sink.Delivery{
		Source: domain.ActivitySourceDeferred,
		Event: domain.NewLinkEvent(&domain.ResolvedLink{
			LinkID:      "lnk_deferred",
			Destination: "/onboarding",
			IsDeferred:  true,
		}),
	}
	if err := s.Deliver(context.Background(), delivery); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	var got payload
	if err := json.Unmarshal(gotBody, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Status != domain.ActivityStatusResolved {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if got.Link == nil || got.Link.LinkID != "lnk_deferred" || !got.Link.IsDeferred {
		t.Fatalf("unexpected link payload: %+v", got.Link)
	}

	mac := hmac.New(sha256.New, []byte("wh_secret"))
	mac.Write(gotBody)
	want := hex.EncodeToString(mac.Sum(nil))
	if gotSignature != want {
		t.Fatalf("signature mismatch: got %s want %s", gotSignature, want)
	}
}

func TestWebhookSinkForwardsFailureArm(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	s := New(nil, WithConfig(Config{URL: server.URL}))

	delivery := sink.Delivery{
		Source: domain.ActivitySourcePush,
		URL:    "https://wayl.ink/dead",
		Event:  domain.NewErrorEvent(domain.NewError(domain.KindLinkNotFound, "no link registered")),
	}
	if err := s.Deliver(context.Background(), delivery); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	var got payload
	if err := json.Unmarshal(gotBody, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Status != domain.ActivityStatusFailed {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if got.ErrorKind != string(domain.KindLinkNotFound) || got.ErrorText != "no link registered" {
		t.Fatalf("unexpected error payload: %+v", got)
	}
}

func TestWebhookSinkRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	s := New(nil, WithConfig(Config{URL: server.URL}))
	err := s.Deliver(context.Background(), sink.Delivery{
		Source: domain.ActivitySourceManual,
		Event:  domain.NewLinkEvent(&domain.ResolvedLink{LinkID: "lnk_1"}),
	})
	if err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestWebhookSinkRequiresURL(t *testing.T) {
	s := New(nil)
	err := s.Deliver(context.Background(), sink.Delivery{
		Source: domain.ActivitySourceManual,
		Event:  domain.NewLinkEvent(&domain.ResolvedLink{LinkID: "lnk_1"}),
	})
	if err == nil {
		t.Fatalf("expected error when url missing")
	}
}

func TestWebhookSinkDryRunSkipsNetwork(t *testing.T) {
	s := New(nil, WithConfig(Config{DryRun: true}))
	err := s.Deliver(context.Background(), sink.Delivery{
		Source: domain.ActivitySourcePush,
		Event:  domain.NewLinkEvent(&domain.ResolvedLink{LinkID: "lnk_1"}),
	})
	if err != nil {
		t.Fatalf("dry run should not error, got %v", err)
	}
}
