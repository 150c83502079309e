package state

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestStore_BeginFinishSuccess(t *testing.T) {
	var s Store

	s.Begin("refresh")
	snap := s.Snapshot()
	if !snap.Loading || snap.Op != "refresh" {
		t.Fatalf("snapshot = %#v, want loading refresh", snap)
	}

	before := time.Now()
	s.Finish("refresh", nil)

	snap = s.Snapshot()
	if snap.Loading {
		t.Fatalf("Loading = true after Finish")
	}
	if snap.LastUpdated.Before(before) || snap.LastSuccess.Before(before) {
		t.Fatalf("timestamps not updated: %#v", snap)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_FinishErrorKeepsLastSuccess(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Store{now: func() time.Time { return fixed }}

	s.Begin("refresh")
	s.Finish("refresh", nil)

	s.now = func() time.Time { return fixed.Add(time.Minute) }
	origErr := errors.New("boom")
	s.Begin("refresh")
	s.Finish("refresh", origErr)

	snap := s.Snapshot()
	if !snap.LastSuccess.Equal(fixed) {
		t.Fatalf("LastSuccess = %v, want %v", snap.LastSuccess, fixed)
	}
	if !snap.LastUpdated.Equal(fixed.Add(time.Minute)) {
		t.Fatalf("LastUpdated = %v, want %v", snap.LastUpdated, fixed.Add(time.Minute))
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("zero store = %#v, want online", snap)
	}

	s.Finish("refresh", errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure = %#v, want online", snap)
	}

	s.Finish("refresh", errors.New("fail 2"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures = %#v, want offline", snap)
	}

	s.Finish("refresh", nil)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %#v, want online", snap)
	}
}

func TestStore_AbandonOnlyClearsLoading(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Store{now: func() time.Time { return fixed }}

	s.Finish("refresh", errors.New("fail 1"))
	s.Begin("refresh")
	s.Abandon("refresh")

	snap := s.Snapshot()
	if snap.Loading {
		t.Fatalf("Loading = true after Abandon")
	}
	if snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("failure state changed: %#v", snap)
	}
	if !snap.LastSuccess.IsZero() || !snap.LastUpdated.Equal(fixed) {
		t.Fatalf("timestamps changed: %#v", snap)
	}
}
