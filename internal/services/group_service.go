// Package services holds the application layer: the in-memory group state,
// its reconciliation with the cloud document, and the mutations the HTTP
// handlers invoke.
package services

import (
	"context"
	"sync"
	"time"

	"chittrack/internal/core"
	"chittrack/internal/log"
	"chittrack/internal/storage"
	"chittrack/internal/store"
)

// SyncStatus describes the relationship with the cloud document.
type SyncStatus string

const (
	// StatusInitializing holds until the first remote delivery or the sync
	// timeout, whichever comes first.
	StatusInitializing SyncStatus = "initializing"
	StatusSynced       SyncStatus = "synced"
	StatusOffline      SyncStatus = "offline"
	// StatusPermissionDenied means cloud credentials were rejected; local
	// edits keep working but will not reach other devices.
	StatusPermissionDenied SyncStatus = "permission-denied"
)

// Publisher notifies the sync worker that the snapshot changed.
type Publisher interface {
	PublishSnapshotDirty(ctx context.Context, groupID string) error
}

// GroupService owns the authoritative in-memory snapshot. Every mutation
// goes through it: apply the core operation, persist to the local cache,
// then signal the worker. Reads never block on the network.
type GroupService struct {
	cache     *storage.Cache
	remote    store.Store
	publisher Publisher
	logger    *log.Logger

	syncTimeout time.Duration

	mu        sync.Mutex
	snap      core.Snapshot
	status    SyncStatus
	cancelSub func()
}

func NewGroupService(cache *storage.Cache, remote store.Store, publisher Publisher, syncTimeout time.Duration, logger *log.Logger) *GroupService {
	return &GroupService{
		cache:       cache,
		remote:      remote,
		publisher:   publisher,
		logger:      logger.WithComponent(log.ComponentSync),
		syncTimeout: syncTimeout,
		status:      StatusInitializing,
	}
}

// Bootstrap loads the cached snapshot (or the default for a fresh install)
// and wires the remote subscription. The first remote delivery wins over the
// local copy; if the cloud document does not exist yet the local state is
// pushed up instead. When nothing arrives within the sync timeout the
// service settles for offline operation on cached data.
func (s *GroupService) Bootstrap(ctx context.Context) error {
	cached, err := s.cache.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if cached != nil {
		s.snap = *cached
	} else {
		s.snap = core.DefaultSnapshot(time.Now())
	}
	s.mu.Unlock()

	timer := time.AfterFunc(s.syncTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status == StatusInitializing {
			s.status = StatusOffline
			s.logger.Warn("no cloud response within timeout, running offline",
				"timeout", s.syncTimeout)
		}
	})

	cancel := s.remote.Subscribe(
		func(remote *core.Snapshot) {
			timer.Stop()
			if remote == nil {
				s.pushLocalUp(ctx)
				return
			}
			s.adoptRemote(ctx, *remote)
		},
		func(err error) {
			timer.Stop()
			s.mu.Lock()
			defer s.mu.Unlock()
			switch store.Classify(err) {
			case store.FailurePermission:
				s.status = StatusPermissionDenied
				s.logger.Error("cloud access denied", log.FieldError, err)
			case store.FailureCancelled:
				// Shutdown in progress; leave the status alone.
			default:
				if s.status == StatusInitializing {
					s.status = StatusOffline
				}
				s.logger.Warn("cloud sync error", log.FieldError, err)
			}
		},
	)

	s.mu.Lock()
	s.cancelSub = cancel
	s.mu.Unlock()
	return nil
}

// pushLocalUp seeds a missing cloud document with the local state.
func (s *GroupService) pushLocalUp(ctx context.Context) {
	s.mu.Lock()
	snap := s.snap.Clone()
	s.mu.Unlock()

	if err := s.remote.Save(ctx, snap); err != nil {
		s.mu.Lock()
		if store.Classify(err) == store.FailurePermission {
			s.status = StatusPermissionDenied
		} else {
			s.status = StatusOffline
		}
		s.mu.Unlock()
		s.logger.Warn("failed to seed cloud document", log.FieldError, err)
		return
	}

	s.mu.Lock()
	s.status = StatusSynced
	s.mu.Unlock()
	s.logger.Info("seeded cloud document from local state",
		log.FieldGroupID, snap.Config.ID)
}

func (s *GroupService) adoptRemote(ctx context.Context, remote core.Snapshot) {
	remote = remote.Normalized()

	s.mu.Lock()
	s.snap = remote
	s.status = StatusSynced
	s.mu.Unlock()

	if err := s.cache.StoreSnapshot(ctx, remote); err != nil {
		s.logger.Warn("failed to cache remote snapshot", log.FieldError, err)
	}
}

// Snapshot returns a copy of the current state.
func (s *GroupService) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Status returns the current cloud sync status.
func (s *GroupService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Overview derives the dashboard overview from the current state.
func (s *GroupService) Overview(now time.Time) core.Overview {
	return core.Project(s.Snapshot(), now)
}

// Ledger derives the per-round ledger from the current state.
func (s *GroupService) Ledger(now time.Time) core.Ledger {
	return core.BuildLedger(s.Snapshot(), now)
}

// apply runs a core mutation under the lock, persists the result, and
// signals the sync worker. On error the state is untouched.
func (s *GroupService) apply(ctx context.Context, op string, fn func(core.Snapshot) (core.Snapshot, error)) error {
	s.mu.Lock()
	next, err := fn(s.snap)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.snap = next
	groupID := next.Config.ID
	s.mu.Unlock()

	if err := s.cache.StoreSnapshot(ctx, next); err != nil {
		s.logger.Error("failed to persist snapshot",
			log.FieldOperation, op, log.FieldError, err)
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotDirty(ctx, groupID); err != nil {
			// The periodic worker push will catch up; local state is safe.
			s.logger.Warn("failed to signal sync worker",
				log.FieldOperation, op, log.FieldError, err)
		}
	}

	s.logger.Info("applied mutation", log.FieldOperation, op, log.FieldGroupID, groupID)
	return nil
}

func (s *GroupService) RecordPayment(ctx context.Context, role core.Role, memberID string, round int, status core.PaymentStatus, method core.PaymentMethod, extra int64, explicitDate string) error {
	return s.apply(ctx, log.OpPayment, func(snap core.Snapshot) (core.Snapshot, error) {
		return core.RecordPayment(snap, role, memberID, round, status, method, extra, explicitDate)
	})
}

func (s *GroupService) RecordAuction(ctx context.Context, role core.Role, round int, amount int64) error {
	return s.apply(ctx, log.OpAuction, func(snap core.Snapshot) (core.Snapshot, error) {
		return core.RecordAuction(snap, role, round, amount)
	})
}

func (s *GroupService) UpsertConfig(ctx context.Context, role core.Role, patch core.ConfigPatch) error {
	return s.apply(ctx, log.OpConfig, func(snap core.Snapshot) (core.Snapshot, error) {
		return core.UpsertConfig(snap, role, patch)
	})
}

func (s *GroupService) AddMember(ctx context.Context, role core.Role, draft core.MemberDraft) (core.Member, error) {
	var added core.Member
	err := s.apply(ctx, log.OpMember, func(snap core.Snapshot) (core.Snapshot, error) {
		next, member, err := core.AddMember(snap, role, draft)
		added = member
		return next, err
	})
	return added, err
}

func (s *GroupService) UpdateMember(ctx context.Context, role core.Role, id string, patch core.MemberPatch) error {
	return s.apply(ctx, log.OpMember, func(snap core.Snapshot) (core.Snapshot, error) {
		return core.UpdateMember(snap, role, id, patch)
	})
}

func (s *GroupService) RemoveMember(ctx context.Context, role core.Role, id string) error {
	return s.apply(ctx, log.OpMember, func(snap core.Snapshot) (core.Snapshot, error) {
		return core.RemoveMember(snap, role, id)
	})
}

// RememberSession persists who logged in on this device, mirroring what the
// cache survives across restarts. Best-effort; login does not fail on it.
func (s *GroupService) RememberSession(ctx context.Context, role core.Role, phone, name string) {
	state := storage.AuthState{Role: string(role), Phone: phone, Name: name}
	if err := s.cache.StoreAuthState(ctx, state); err != nil {
		s.logger.Warn("failed to remember session", log.FieldError, err)
	}
}

// ForgetSession clears the remembered login.
func (s *GroupService) ForgetSession(ctx context.Context) {
	if err := s.cache.ClearAuthState(ctx); err != nil {
		s.logger.Warn("failed to clear remembered session", log.FieldError, err)
	}
}

// RememberedSession returns the last login recorded on this device, if any.
func (s *GroupService) RememberedSession(ctx context.Context) (*storage.AuthState, error) {
	return s.cache.LoadAuthState(ctx)
}

// Close tears down the remote subscription.
func (s *GroupService) Close() {
	s.mu.Lock()
	cancel := s.cancelSub
	s.cancelSub = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
