// Package archive stores raw webhook payloads in object storage for audit
// and replay. Archival is best-effort: it runs after the submission
// transaction has committed and a failure here never affects ingestion.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"compass_backend/internal/adapters/storage"
	"compass_backend/internal/events"
	"compass_backend/platform/logger"
)

// Archiver uploads raw submission payloads to an object-storage bucket.
type Archiver struct {
	store  storage.ObjectStore
	bucket string
	log    *logger.Logger
}

// New creates a payload archiver writing to the given bucket.
func New(store storage.ObjectStore, bucket string, log *logger.Logger) *Archiver {
	return &Archiver{store: store, bucket: bucket, log: log}
}

// Register subscribes the archiver to submission events and makes sure the
// target bucket exists.
func (a *Archiver) Register(ctx context.Context, bus events.Bus) error {
	if err := a.store.EnsureBucketExists(ctx, a.bucket); err != nil {
		return fmt.Errorf("archive bucket: %w", err)
	}

	bus.Subscribe(events.SubmissionIngested{}.EventName(), events.HandlerFunc(a.handleIngested))
	return nil
}

func (a *Archiver) handleIngested(ctx context.Context, event events.Event) error {
	ingested, ok := event.(events.SubmissionIngested)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if len(ingested.RawPayload) == 0 {
		return nil
	}

	// One object per external id; a replayed webhook overwrites the
	// previous payload, matching the upsert semantics of the store.
	key := fmt.Sprintf("%s/%s.json", ingested.AssessmentID, ingested.ExternalID)
	err := a.store.PutObject(ctx, a.bucket, key, "application/json",
		bytes.NewReader(ingested.RawPayload), int64(len(ingested.RawPayload)))
	if err != nil {
		a.log.Warn("payload_archive_failed",
			slog.String("external_id", ingested.ExternalID),
			slog.String("error", err.Error()),
		)
		return err
	}

	a.log.Debug("payload_archived",
		slog.String("external_id", ingested.ExternalID),
		slog.String("key", key),
	)
	return nil
}
