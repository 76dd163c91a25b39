package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("pq: connection refused")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestUnixTimeRoundTrip(t *testing.T) {
	t.Run("zero time maps to zero", func(t *testing.T) {
		if got := timeToUnix(time.Time{}); got != 0 {
			t.Fatalf("expected 0, got %d", got)
		}
		if got := unixToTime(0); !got.IsZero() {
			t.Fatalf("expected zero time, got %s", got)
		}
	})

	t.Run("round trip keeps the instant", func(t *testing.T) {
		at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
		if got := unixToTime(timeToUnix(at)); !got.Equal(at) {
			t.Fatalf("got %s, want %s", got, at)
		}
	})

	t.Run("non-UTC input normalizes", func(t *testing.T) {
		loc := time.FixedZone("UTC+7", 7*3600)
		at := time.Date(2025, 6, 1, 19, 30, 0, 0, loc)
		got := unixToTime(timeToUnix(at))
		if !got.Equal(at) {
			t.Fatalf("got %s, want same instant as %s", got, at)
		}
		if got.Location() != time.UTC {
			t.Fatalf("expected UTC location, got %s", got.Location())
		}
	})
}
