package services

import (
	"context"
	"testing"

	"google.golang.org/api/googleapi"

	"chittrack/internal/core"
)

// silentStore never delivers anything, standing in for an unreachable cloud.
type silentStore struct{}

func (silentStore) FetchOnce(context.Context) (*core.Snapshot, error) { return nil, nil }
func (silentStore) Save(context.Context, core.Snapshot) error         { return nil }
func (silentStore) Subscribe(func(*core.Snapshot), func(error)) func() {
	return func() {}
}

// deniedStore reports rejected credentials on subscribe.
type deniedStore struct{}

func (deniedStore) FetchOnce(context.Context) (*core.Snapshot, error) { return nil, nil }
func (deniedStore) Save(context.Context, core.Snapshot) error         { return nil }
func (deniedStore) Subscribe(_ func(*core.Snapshot), onError func(error)) func() {
	go onError(&googleapi.Error{Code: 403, Message: "missing permission"})
	return func() {}
}

func TestSyncTimeoutFallsBackToOffline(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.remote = silentStore{}
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := svc.Status(); got != StatusInitializing {
		t.Fatalf("status before timeout = %s", got)
	}
	waitForStatus(t, svc, StatusOffline)

	// Cached data still serves reads while offline.
	if svc.Snapshot().Config.DurationMonths == 0 {
		t.Fatal("no usable snapshot while offline")
	}
}

func TestPermissionFailureSurfaces(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.remote = deniedStore{}
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitForStatus(t, svc, StatusPermissionDenied)
}

func TestMutationsKeepWorkingOffline(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.remote = silentStore{}
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitForStatus(t, svc, StatusOffline)

	if err := svc.RecordAuction(context.Background(), core.RoleAdmin, 0, 3000); err != nil {
		t.Fatal(err)
	}
	if got := svc.Snapshot().AuctionAmount(0); got != 3000 {
		t.Fatalf("auction = %d", got)
	}
}
