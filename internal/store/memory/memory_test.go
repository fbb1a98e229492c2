package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"chittrack/internal/core"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestFetchOnceEmpty(t *testing.T) {
	s := New()
	snap, err := s.FetchOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestSaveThenFetch(t *testing.T) {
	s := New()
	want := core.DefaultSnapshot(time.Now())
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatal(err)
	}
	got, err := s.FetchOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Config.ID != want.Config.ID {
		t.Fatalf("fetched %+v", got)
	}

	// Mutating the fetched copy must not leak into the store.
	got.Config.Name = "tampered"
	again, _ := s.FetchOnce(context.Background())
	if again.Config.Name == "tampered" {
		t.Fatal("store returned shared state")
	}
}

func TestSubscribeInitialDelivery(t *testing.T) {
	s := NewWithSnapshot(core.DefaultSnapshot(time.Now()))

	var got atomic.Int32
	cancel := s.Subscribe(func(snap *core.Snapshot) {
		if snap != nil {
			got.Add(1)
		}
	}, nil)
	defer cancel()

	waitFor(t, func() bool { return got.Load() == 1 })
}

func TestSubscribeInitialNilWhenAbsent(t *testing.T) {
	s := New()

	delivered := make(chan *core.Snapshot, 1)
	cancel := s.Subscribe(func(snap *core.Snapshot) {
		delivered <- snap
	}, nil)
	defer cancel()

	select {
	case snap := <-delivered:
		if snap != nil {
			t.Fatalf("expected nil for absent document, got %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial delivery")
	}
}

func TestSubscribeSeesSaves(t *testing.T) {
	s := New()

	var count atomic.Int32
	cancel := s.Subscribe(func(*core.Snapshot) { count.Add(1) }, nil)
	defer cancel()

	waitFor(t, func() bool { return count.Load() == 1 })

	if err := s.Save(context.Background(), core.DefaultSnapshot(time.Now())); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return count.Load() == 2 })
}

func TestCancelStopsCallbacksAndIsIdempotent(t *testing.T) {
	s := New()

	var count atomic.Int32
	cancel := s.Subscribe(func(*core.Snapshot) { count.Add(1) }, nil)
	waitFor(t, func() bool { return count.Load() == 1 })

	cancel()
	cancel() // second call must be a no-op

	before := count.Load()
	if err := s.Save(context.Background(), core.DefaultSnapshot(time.Now())); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if count.Load() != before {
		t.Fatalf("callback fired after cancel: %d -> %d", before, count.Load())
	}
}
