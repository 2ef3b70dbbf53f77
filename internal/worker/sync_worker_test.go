package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"masjid/internal/amqp"
	"masjid/internal/core"
	applog "masjid/internal/log"
	"masjid/internal/records"
)

type fakeSource struct {
	records map[records.Kind]map[string]any
	pending map[records.Kind][]string
	status  map[string]string
	getErr  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		records: map[records.Kind]map[string]any{},
		pending: map[records.Kind][]string{},
		status:  map[string]string{},
	}
}

func (f *fakeSource) put(kind records.Kind, id string, v any) {
	if f.records[kind] == nil {
		f.records[kind] = map[string]any{}
	}
	f.records[kind][id] = v
	f.pending[kind] = append(f.pending[kind], id)
}

func (f *fakeSource) Get(_ context.Context, kind records.Kind, id string) (any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.records[kind][id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	return v, nil
}

func (f *fakeSource) SyncStatus(_ context.Context, kind records.Kind, id string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if _, ok := f.records[kind][id]; !ok {
		return "", fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	if s := f.status[id]; s != "" {
		return s, nil
	}
	return "pending", nil
}

func (f *fakeSource) PendingSync(_ context.Context, kind records.Kind, limit int) ([]string, error) {
	var ids []string
	for _, id := range f.pending[kind] {
		if f.status[id] == "" && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeSource) MarkSynced(_ context.Context, _ records.Kind, id string) error {
	f.status[id] = "synced"
	return nil
}

func (f *fakeSource) MarkSyncError(_ context.Context, _ records.Kind, id string) error {
	f.status[id] = "error"
	return nil
}

type fakeAppender struct {
	rows []any
	fail map[string]bool
}

func (a *fakeAppender) AppendRecord(_ context.Context, kind records.Kind, record any) (string, error) {
	if d, ok := record.(core.Donor); ok && a.fail[d.ID] {
		return "", errors.New("quota exceeded")
	}
	a.rows = append(a.rows, record)
	return fmt.Sprintf("%s!A%d", kind, len(a.rows)), nil
}

func TestHandleSyncMessage(t *testing.T) {
	src := newFakeSource()
	src.put(records.KindDonations, "n1", core.Donation{ID: "n1", DonorName: "Ahmed", Amount: 100})
	app := &fakeAppender{}
	w := NewSyncWorker(src, app, 10, applog.Discard())

	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("donations", "n1")); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(app.rows) != 1 {
		t.Fatalf("expected one appended row, got %d", len(app.rows))
	}
	if src.status["n1"] != "synced" {
		t.Errorf("status = %q, want synced", src.status["n1"])
	}
}

func TestHandleSyncMessage_Drops(t *testing.T) {
	src := newFakeSource()
	app := &fakeAppender{}
	w := NewSyncWorker(src, app, 10, applog.Discard())

	for _, msg := range []*amqp.RecordSyncMessage{
		amqp.NewRecordSyncMessage("ledger", "x"),
		amqp.NewRecordSyncMessage("donors", "missing"),
	} {
		if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
			t.Errorf("%s/%s: expected drop without error, got %v", msg.Kind, msg.ID, err)
		}
	}
	if len(app.rows) != 0 {
		t.Errorf("nothing should be appended, got %d rows", len(app.rows))
	}
}

func TestHandleSyncMessage_AfterSweep(t *testing.T) {
	src := newFakeSource()
	src.put(records.KindDonors, "d1", core.Donor{ID: "d1", Name: "A"})
	app := &fakeAppender{}
	w := NewSyncWorker(src, app, 10, applog.Discard())

	if _, err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("donors", "d1")); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(app.rows) != 1 {
		t.Errorf("record appended %d times, want once", len(app.rows))
	}
	if src.status["d1"] != "synced" {
		t.Errorf("status = %q, want synced", src.status["d1"])
	}
}

func TestHandleSyncMessage_RetriesErrored(t *testing.T) {
	src := newFakeSource()
	src.put(records.KindDonors, "d1", core.Donor{ID: "d1", Name: "A"})
	src.status["d1"] = "error"
	app := &fakeAppender{}
	w := NewSyncWorker(src, app, 10, applog.Discard())

	if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("donors", "d1")); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(app.rows) != 1 || src.status["d1"] != "synced" {
		t.Errorf("rows = %d, status = %q; want one row and synced", len(app.rows), src.status["d1"])
	}
}

func TestHandleSyncMessage_Failures(t *testing.T) {
	t.Run("storage error requests redelivery", func(t *testing.T) {
		src := newFakeSource()
		src.getErr = errors.New("database is locked")
		w := NewSyncWorker(src, &fakeAppender{}, 10, applog.Discard())
		if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("donors", "d1")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("append error marks the record", func(t *testing.T) {
		src := newFakeSource()
		src.put(records.KindDonors, "d1", core.Donor{ID: "d1", Name: "A"})
		app := &fakeAppender{fail: map[string]bool{"d1": true}}
		w := NewSyncWorker(src, app, 10, applog.Discard())
		if err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage("donors", "d1")); err == nil {
			t.Fatal("expected error")
		}
		if src.status["d1"] != "error" {
			t.Errorf("status = %q, want error", src.status["d1"])
		}
	})
}

func TestProcessPending(t *testing.T) {
	src := newFakeSource()
	src.put(records.KindDonors, "d1", core.Donor{ID: "d1", Name: "A"})
	src.put(records.KindDonors, "d2", core.Donor{ID: "d2", Name: "B"})
	src.put(records.KindExpenses, "e1", core.Expense{ID: "e1", Amount: 50})
	src.pending[records.KindProjects] = []string{"ghost"}
	app := &fakeAppender{fail: map[string]bool{"d2": true}}
	w := NewSyncWorker(src, app, 10, applog.Discard())

	stats, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if stats.Synced != 2 || stats.Failed != 2 {
		t.Errorf("stats = %+v, want 2 synced and 2 failed", stats)
	}
	want := map[string]string{"d1": "synced", "d2": "error", "e1": "synced", "ghost": "error"}
	for id, s := range want {
		if src.status[id] != s {
			t.Errorf("status[%s] = %q, want %q", id, src.status[id], s)
		}
	}

	stats, err = w.ProcessPending(context.Background())
	if err != nil || stats != (SyncStats{}) {
		t.Errorf("second sweep = %+v, %v; want nothing left", stats, err)
	}
}

func TestStartupSyncCheck_Cancelled(t *testing.T) {
	src := newFakeSource()
	src.put(records.KindDonors, "d1", core.Donor{ID: "d1", Name: "A"})
	w := NewSyncWorker(src, &fakeAppender{}, 1, applog.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.StartupSyncCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
