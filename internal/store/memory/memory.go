// Package memory provides an in-process Store for tests and local runs.
package memory

import (
	"context"
	"sync"

	"chittrack/internal/core"
)

type Store struct {
	mu   sync.Mutex
	snap *core.Snapshot
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	onSnapshot func(*core.Snapshot)
	pending    chan *core.Snapshot
	done       chan struct{}
}

func New() *Store {
	return &Store{subs: map[int]*subscriber{}}
}

// NewWithSnapshot seeds the store with an existing document.
func NewWithSnapshot(snap core.Snapshot) *Store {
	s := New()
	clone := snap.Clone()
	s.snap = &clone
	return s
}

func (s *Store) FetchOnce(_ context.Context) (*core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloned(s.snap), nil
}

func (s *Store) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	clone := snap.Clone()
	s.snap = &clone
	targets := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(cloned(&clone))
	}
	return nil
}

// Subscribe delivers the current document asynchronously, then every Save.
// Callbacks run on a dedicated goroutine per subscriber, in order.
func (s *Store) Subscribe(onSnapshot func(*core.Snapshot), _ func(error)) func() {
	sub := &subscriber{
		onSnapshot: onSnapshot,
		pending:    make(chan *core.Snapshot, 16),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = sub
	initial := cloned(s.snap)
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-sub.done:
				return
			case snap := <-sub.pending:
				select {
				case <-sub.done:
					return
				default:
				}
				sub.onSnapshot(snap)
			}
		}
	}()
	sub.deliver(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.done)
			<-stopped
		})
	}
}

func (sub *subscriber) deliver(snap *core.Snapshot) {
	select {
	case sub.pending <- snap:
	case <-sub.done:
	}
}

func cloned(snap *core.Snapshot) *core.Snapshot {
	if snap == nil {
		return nil
	}
	c := snap.Clone()
	return &c
}
