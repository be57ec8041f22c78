package timeutil

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClockSince(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestFakeClockNowReflectsSet(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	if !clock.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", clock.Now(), start)
	}

	later := start.Add(time.Hour)
	clock.Set(later)
	if !clock.Now().Equal(later) {
		t.Fatalf("Now() after Set = %v, want %v", clock.Now(), later)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	clock.Advance(500 * time.Millisecond)
	clock.Advance(500 * time.Millisecond)

	if !clock.Now().Equal(start.Add(time.Second)) {
		t.Fatalf("Now() after two Advance calls = %v, want %v", clock.Now(), start.Add(time.Second))
	}
}

func TestFakeClockSince(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)
	past := start.Add(-3 * time.Second)

	if d := clock.Since(past); d != 3*time.Second {
		t.Errorf("Since() = %v, want 3s", d)
	}

	clock.Advance(2 * time.Second)
	if d := clock.Since(past); d != 5*time.Second {
		t.Errorf("Since() after advance = %v, want 5s", d)
	}
}
