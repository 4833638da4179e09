package domain_test

import (
	"testing"
	"time"

	"github.com/hexapod/packs-go/internal/domain"
)

func TestCanOpenOn(t *testing.T) {
	loc := time.UTC

	cases := []struct {
		name       string
		lastOpened time.Time
		now        time.Time
		want       bool
	}{
		{
			name: "no record",
			now:  time.Date(2025, 6, 10, 12, 0, 0, 0, loc),
			want: true,
		},
		{
			name:       "same day",
			lastOpened: time.Date(2025, 6, 10, 8, 0, 0, 0, loc),
			now:        time.Date(2025, 6, 10, 23, 59, 59, 0, loc),
			want:       false,
		},
		{
			name:       "midnight boundary not rolling window",
			lastOpened: time.Date(2025, 6, 10, 23, 59, 59, 0, loc),
			now:        time.Date(2025, 6, 11, 0, 0, 1, 0, loc),
			want:       true,
		},
		{
			name:       "previous day",
			lastOpened: time.Date(2025, 6, 9, 12, 0, 0, 0, loc),
			now:        time.Date(2025, 6, 10, 12, 0, 0, 0, loc),
			want:       true,
		},
		{
			name:       "month boundary",
			lastOpened: time.Date(2025, 6, 30, 23, 0, 0, 0, loc),
			now:        time.Date(2025, 7, 1, 1, 0, 0, 0, loc),
			want:       true,
		},
		{
			name:       "clock moved backwards",
			lastOpened: time.Date(2025, 6, 11, 1, 0, 0, 0, loc),
			now:        time.Date(2025, 6, 10, 23, 0, 0, 0, loc),
			want:       false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.CanOpenOn(tc.lastOpened, tc.now, loc); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanOpenOn_LocalDateNotUTC(t *testing.T) {
	// 2025-06-10 23:00 UTC is already 2025-06-11 in UTC+2; an open at that
	// instant must gate against the local date.
	loc := time.FixedZone("UTC+2", 2*60*60)
	lastOpened := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC) // 2025-06-11 01:00 local
	now := time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC)        // 2025-06-12 01:00 local

	if !domain.CanOpenOn(lastOpened, now, loc) {
		t.Error("expected eligibility: local date advanced past the open")
	}

	sameLocalDay := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC) // 2025-06-11 12:00 local
	if domain.CanOpenOn(lastOpened, sameLocalDay, loc) {
		t.Error("expected gate: same local calendar day")
	}
}
