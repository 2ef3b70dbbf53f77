package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"masjid/internal/amqp"
	applog "masjid/internal/log"
	"masjid/internal/records"
	"masjid/internal/sheets"
)

// Source is the slice of the SQLite repository the worker needs.
type Source interface {
	Get(ctx context.Context, kind records.Kind, id string) (any, error)
	SyncStatus(ctx context.Context, kind records.Kind, id string) (string, error)
	PendingSync(ctx context.Context, kind records.Kind, limit int) ([]string, error)
	MarkSynced(ctx context.Context, kind records.Kind, id string) error
	MarkSyncError(ctx context.Context, kind records.Kind, id string) error
}

// statusSynced matches storage.SyncDone.
const statusSynced = "synced"

// SyncWorker mirrors stored records into the Google Sheets ledger.
type SyncWorker struct {
	store     Source
	sheets    sheets.RecordAppender
	batchSize int
	logger    *applog.Logger
}

// SyncStats summarizes one sweep over pending records.
type SyncStats struct {
	Synced int
	Failed int
}

func NewSyncWorker(store Source, appender sheets.RecordAppender, batchSize int, logger *applog.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		store:     store,
		sheets:    appender,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
// Messages that can never succeed, or whose record a sweep already mirrored,
// are acknowledged and dropped; a returned error asks the broker to redeliver.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	kind := records.Kind(msg.Kind)
	w.logger.InfoContext(ctx, "Processing sync message",
		applog.FieldRecordKind, msg.Kind,
		applog.FieldRecordID, msg.ID)

	if !kind.Valid() {
		w.logger.WarnContext(ctx, "Dropping sync message with unknown kind", applog.FieldRecordKind, msg.Kind)
		return nil
	}

	status, err := w.store.SyncStatus(ctx, kind, msg.ID)
	if err == nil && status == statusSynced {
		w.logger.InfoContext(ctx, "Record already synced, skipping",
			applog.FieldRecordKind, msg.Kind,
			applog.FieldRecordID, msg.ID)
		return nil
	}
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return fmt.Errorf("sync status of %s: %w", kind, err)
	}

	record, err := w.store.Get(ctx, kind, msg.ID)
	if errors.Is(err, records.ErrNotFound) {
		w.logger.WarnContext(ctx, "Record no longer exists, skipping",
			applog.FieldRecordKind, msg.Kind,
			applog.FieldRecordID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s from storage: %w", kind, err)
	}

	if err := w.syncRecord(ctx, kind, msg.ID, record); err != nil {
		return fmt.Errorf("sync %s to sheets: %w", kind, err)
	}
	return nil
}

// ProcessPending syncs records that haven't been mirrored yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) (SyncStats, error) {
	return w.sweep(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger sweep at worker startup to recover from
// downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) (SyncStats, error) {
	stats, err := w.sweep(ctx, w.batchSize*5)
	if err != nil {
		return stats, fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed",
		"synced", stats.Synced,
		"errors", stats.Failed)
	return stats, nil
}

// RunPeriodic sweeps pending records every interval until ctx is done.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			}
		}
	}
}

func (w *SyncWorker) sweep(ctx context.Context, limit int) (SyncStats, error) {
	var stats SyncStats
	for _, kind := range records.Kinds {
		ids, err := w.store.PendingSync(ctx, kind, limit)
		if err != nil {
			return stats, fmt.Errorf("get pending %s: %w", kind, err)
		}
		if len(ids) == 0 {
			continue
		}
		w.logger.InfoContext(ctx, "Processing pending records",
			applog.FieldRecordKind, string(kind),
			"count", len(ids))

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			record, err := w.store.Get(ctx, kind, id)
			if err != nil {
				w.logger.ErrorContext(ctx, "Failed to load pending record",
					applog.FieldRecordKind, string(kind),
					applog.FieldRecordID, id,
					applog.FieldError, err)
				w.markError(ctx, kind, id)
				stats.Failed++
				continue
			}
			if err := w.syncRecord(ctx, kind, id, record); err != nil {
				stats.Failed++
				continue
			}
			stats.Synced++
		}
	}
	return stats, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, kind records.Kind, id string, record any) error {
	ref, err := w.sheets.AppendRecord(ctx, kind, record)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to append record",
			applog.FieldRecordKind, string(kind),
			applog.FieldRecordID, id,
			applog.FieldError, err)
		w.markError(ctx, kind, id)
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The row is already written; a failed status update only means a
	// later sweep may append it again.
	if err := w.store.MarkSynced(ctx, kind, id); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced",
			applog.FieldRecordKind, string(kind),
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced record",
		applog.FieldRecordKind, string(kind),
		applog.FieldRecordID, id,
		"sheets_ref", ref)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, kind records.Kind, id string) {
	if err := w.store.MarkSyncError(ctx, kind, id); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark sync error",
			applog.FieldRecordKind, string(kind),
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}
}
