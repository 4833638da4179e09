package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hexapod/packs-go/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPack(tiers ...domain.RarityTier) domain.Pack {
	cards := make([]domain.DrawnCard, len(tiers))
	for i, tier := range tiers {
		cards[i] = domain.DrawnCard{
			Card: domain.Card{Name: "Card " + string(rune('A'+i))},
			Tier: tier,
		}
	}
	return domain.Pack{
		ID:       "pack-1",
		Cards:    cards,
		OpenedAt: time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC),
	}
}

func decodePayload(t *testing.T, body []byte) payload {
	t.Helper()
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(p.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(p.Embeds))
	}
	return p
}

func TestPackOpened_TextEmbed(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(http.DefaultClient, srv.URL, nil, testLogger())
	identity := domain.Identity{ID: "190285014", Username: "bugfan"}
	pack := testPack(domain.TierCommon, domain.TierUncommon, domain.TierCommon)

	if err := n.PackOpened(context.Background(), identity, pack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := decodePayload(t, body)
	e := p.Embeds[0]

	if e.Title != "Daily Pack Opening" {
		t.Errorf("expected embed title, got %q", e.Title)
	}
	if e.Color != colorUncommon {
		t.Errorf("expected uncommon color %#x, got %#x", colorUncommon, e.Color)
	}
	if e.Fields[0].Value != "<@190285014>" {
		t.Errorf("expected player mention, got %q", e.Fields[0].Value)
	}

	cardList := e.Fields[2].Value
	wantLines := []string{
		"⚪ **Card A** (common)",
		"🔵 **Card B** (uncommon)",
		"⚪ **Card C** (common)",
	}
	if cardList != strings.Join(wantLines, "\n") {
		t.Errorf("unexpected card list:\n%s", cardList)
	}
}

func TestPackOpened_ColorByBestRarity(t *testing.T) {
	cases := []struct {
		name  string
		pack  domain.Pack
		color int
	}{
		{"legendary wins", testPack(domain.TierCommon, domain.TierUncommon, domain.TierLegendary), colorLegendary},
		{"uncommon without legendary", testPack(domain.TierCommon, domain.TierUncommon), colorUncommon},
		{"common only", testPack(domain.TierCommon, domain.TierCommon), colorCommon},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			n := NewNotifier(http.DefaultClient, srv.URL, nil, testLogger())
			if err := n.PackOpened(context.Background(), domain.Identity{ID: "1"}, tc.pack); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := decodePayload(t, body).Embeds[0].Color; got != tc.color {
				t.Errorf("expected color %#x, got %#x", tc.color, got)
			}
		})
	}
}

func TestPackOpened_ImageFirstThenTextFallback(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		requests = append(requests, contentType)
		if strings.HasPrefix(contentType, "multipart/form-data") {
			// Reject the image attempt to force the text fallback.
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	snapshot := func(context.Context, domain.Pack) ([]byte, error) {
		return []byte("png-bytes"), nil
	}
	n := NewNotifier(http.DefaultClient, srv.URL, snapshot, testLogger())

	if err := n.PackOpened(context.Background(), domain.Identity{ID: "1"}, testPack(domain.TierCommon)); err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected image attempt plus one text fallback, got %d requests", len(requests))
	}
	if !strings.HasPrefix(requests[0], "multipart/form-data") {
		t.Errorf("first attempt should be multipart, got %q", requests[0])
	}
	if requests[1] != "application/json" {
		t.Errorf("fallback should be json, got %q", requests[1])
	}
}

func TestPackOpened_SnapshotErrorSkipsImage(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected json only, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	snapshot := func(context.Context, domain.Pack) ([]byte, error) {
		return nil, errors.New("render failed")
	}
	n := NewNotifier(http.DefaultClient, srv.URL, snapshot, testLogger())

	if err := n.PackOpened(context.Background(), domain.Identity{ID: "1"}, testPack(domain.TierCommon)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected a single text request, got %d", requests)
	}
}

func TestPackOpened_DeliveryFailureReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewNotifier(http.DefaultClient, srv.URL, nil, testLogger())

	if err := n.PackOpened(context.Background(), domain.Identity{ID: "1"}, testPack(domain.TierCommon)); err == nil {
		t.Fatal("expected delivery error to be reported to the caller")
	}
}
