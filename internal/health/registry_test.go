package health

import (
	"testing"
	"time"
)

func TestRegistry_RecordSuccess(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.RecordFailure("hn", now)
	r.RecordFailure("hn", now)
	r.RecordSuccess("hn", now)

	s := r.Get("hn")
	if s.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d, want 0", s.ConsecutiveFailures)
	}
	if !s.BackoffUntil.IsZero() {
		t.Errorf("BackoffUntil = %v, want zero", s.BackoffUntil)
	}
	if s.TotalSuccesses != 1 {
		t.Errorf("TotalSuccesses = %d, want 1", s.TotalSuccesses)
	}
}

func TestRegistry_BackoffEscalation(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	for i := 0; i < 5; i++ {
		r.RecordFailure("flaky", now)
	}
	s := r.Get("flaky")
	if s.ConsecutiveFailures != 5 {
		t.Fatalf("ConsecutiveFailures = %d, want 5", s.ConsecutiveFailures)
	}
	wantHours := 1.0 // min(2^(5-5), 24) = 1
	gotHours := s.BackoffUntil.Sub(now).Hours()
	if gotHours < wantHours-0.01 || gotHours > wantHours+0.01 {
		t.Errorf("backoff after 5 failures = %.2fh, want %.2fh", gotHours, wantHours)
	}

	r.RecordFailure("flaky", now)
	s = r.Get("flaky")
	gotHours = s.BackoffUntil.Sub(now).Hours()
	if gotHours < 1.99 || gotHours > 2.01 {
		t.Errorf("backoff after 6 failures = %.2fh, want ~2h", gotHours)
	}

	for i := 0; i < 4; i++ {
		r.RecordFailure("flaky", now)
	}
	s = r.Get("flaky")
	if s.ConsecutiveFailures != 10 {
		t.Fatalf("ConsecutiveFailures = %d, want 10", s.ConsecutiveFailures)
	}
	gotHours = s.BackoffUntil.Sub(now).Hours()
	if gotHours < 23.99 || gotHours > 24.01 {
		t.Errorf("backoff after 10 failures = %.2fh, want 24h (capped)", gotHours)
	}
}

func TestRegistry_ShouldSkip(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	if r.ShouldSkip("unknown", now) {
		t.Error("unknown source should not be skipped")
	}

	r.RecordFailure("hn", now)
	r.RecordFailure("hn", now)
	if r.ShouldSkip("hn", now) {
		t.Error("source below SkipThreshold should not be skipped")
	}

	for i := 0; i < 3; i++ {
		r.RecordFailure("hn", now)
	}
	if !r.ShouldSkip("hn", now) {
		t.Error("source at SkipThreshold should be skipped")
	}
	if !r.ShouldSkip("hn", now.Add(30*time.Minute)) {
		t.Error("source should remain skipped while within backoff window")
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	for i := 0; i < 6; i++ {
		r.RecordFailure("hn", now)
	}
	r.Reset("hn")
	s := r.Get("hn")
	if s.ConsecutiveFailures != 0 || !s.BackoffUntil.IsZero() {
		t.Errorf("Reset did not clear state: %+v", s)
	}
}
