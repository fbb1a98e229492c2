// Package store defines the port to the remote group document.
package store

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"

	"chittrack/internal/core"
)

// Store is the outbound port to the shared group document. A nil snapshot
// from FetchOnce means the document does not exist yet.
type Store interface {
	// FetchOnce reads the current remote document, or (nil, nil) when absent.
	FetchOnce(ctx context.Context) (*core.Snapshot, error)

	// Save writes the full snapshot, replacing the remote document.
	Save(ctx context.Context, snap core.Snapshot) error

	// Subscribe starts delivering remote snapshots to onSnapshot until the
	// returned cancel func is called. A nil snapshot is delivered when the
	// document is absent. The cancel func is idempotent and, on return,
	// guarantees no further callbacks fire.
	Subscribe(onSnapshot func(*core.Snapshot), onError func(error)) (cancel func())
}

// FailureKind partitions store errors by how callers should react.
type FailureKind int

const (
	// FailureTransient covers network hiccups and server errors; worth retrying.
	FailureTransient FailureKind = iota
	// FailurePermission means credentials were rejected; retrying cannot help.
	FailurePermission
	// FailureCancelled means the caller's context ended.
	FailureCancelled
)

// Classify maps an error from a Store to the action a caller should take.
func Classify(err error) FailureKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureCancelled
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 401 || apiErr.Code == 403 {
			return FailurePermission
		}
	}
	return FailureTransient
}
