package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingPending, BookingPending, false},
		{BookingConfirmed, BookingConfirmed, false},
		{BookingCancelled, BookingCancelled, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanCancelAt(t *testing.T) {
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"48h ahead", now.Add(48 * time.Hour), true},
		{"24h01m ahead", now.Add(24*time.Hour + time.Minute), true},
		{"exactly 24h ahead", now.Add(24 * time.Hour), false},
		{"23h59m ahead", now.Add(24*time.Hour - time.Minute), false},
		{"already started", now.Add(-time.Hour), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanCancelAt(now, c.start); got != c.want {
				t.Errorf("CanCancelAt(now, start) = %v, want %v", got, c.want)
			}
		})
	}
}

func TestIsActive(t *testing.T) {
	if !IsActive(BookingPending) || !IsActive(BookingConfirmed) {
		t.Error("PENDING and CONFIRMED must count as active")
	}
	if IsActive(BookingCancelled) {
		t.Error("CANCELLED must not count as active")
	}
}
