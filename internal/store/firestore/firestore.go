// Package firestore persists the group document in Cloud Firestore through
// the REST API. The document lives at groups/{docID} and holds the whole
// snapshot; reads and writes always move the full document.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	fs "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"chittrack/internal/core"
	"chittrack/internal/log"
	"chittrack/internal/store"
)

type Client struct {
	svc          *fs.Service
	docName      string
	pollInterval time.Duration
	logger       *log.Logger
}

var _ store.Store = (*Client)(nil)

// Options configure the Firestore client.
type Options struct {
	ProjectID string
	// Database defaults to "(default)".
	Database string
	// DocID names the group document under the "groups" collection.
	DocID string
	// APIKey, when set, authenticates with a web API key instead of ADC.
	APIKey string
	// PollInterval is how often Subscribe re-reads the document.
	PollInterval time.Duration
}

func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if opts.ProjectID == "" {
		return nil, fmt.Errorf("firestore: project id required")
	}
	if opts.Database == "" {
		opts.Database = "(default)"
	}
	if opts.DocID == "" {
		return nil, fmt.Errorf("firestore: document id required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 15 * time.Second
	}

	var clientOpts []option.ClientOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	} else {
		clientOpts = append(clientOpts, option.WithScopes(fs.DatastoreScope))
	}
	svc, err := fs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("firestore service: %w", err)
	}

	return &Client{
		svc: svc,
		docName: fmt.Sprintf("projects/%s/databases/%s/documents/groups/%s",
			opts.ProjectID, opts.Database, opts.DocID),
		pollInterval: opts.PollInterval,
		logger:       logger.WithComponent(log.ComponentStore),
	}, nil
}

// FetchOnce reads the group document. A missing document is not an error.
func (c *Client) FetchOnce(ctx context.Context) (*core.Snapshot, error) {
	doc, err := c.svc.Projects.Databases.Documents.Get(c.docName).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch group document: %w", err)
	}
	snap := decodeSnapshot(doc.Fields)
	return &snap, nil
}

// Save replaces the group document with the snapshot.
func (c *Client) Save(ctx context.Context, snap core.Snapshot) error {
	doc := &fs.Document{Fields: encodeSnapshot(snap.Normalized())}
	_, err := c.svc.Projects.Databases.Documents.Patch(c.docName, doc).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("save group document: %w", err)
	}
	return nil
}

// Subscribe polls the document and delivers a snapshot whenever its content
// changes, starting with an immediate read. The REST surface has no listen
// stream, so polling stands in for the realtime channel native SDKs offer.
func (c *Client) Subscribe(onSnapshot func(*core.Snapshot), onError func(error)) func() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		var lastFingerprint []byte
		seeded := false

		poll := func() {
			snap, err := c.FetchOnce(ctx)
			if err != nil {
				if store.Classify(err) == store.FailureCancelled {
					return
				}
				c.logger.Warn("poll failed", log.FieldError, err)
				if onError != nil {
					onError(err)
				}
				return
			}
			fp := fingerprint(snap)
			if seeded && bytes.Equal(fp, lastFingerprint) {
				return
			}
			seeded = true
			lastFingerprint = fp
			onSnapshot(snap)
		}

		poll()
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelCtx()
			<-done
		})
	}
}

func fingerprint(snap *core.Snapshot) []byte {
	if snap == nil {
		return nil
	}
	b, err := json.Marshal(snap.Normalized())
	if err != nil {
		return nil
	}
	return b
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}
