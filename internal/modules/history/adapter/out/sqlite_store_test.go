package out

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"veil/internal/modules/history/domain"
	apperrors "veil/internal/platform/errors"
)

func newTestStore(t *testing.T) *SQLiteRunStore {
	t.Helper()
	store, err := NewSQLiteRunStore(filepath.Join(t.TempDir(), "veil", "veil.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store.(*SQLiteRunStore)
}

func sampleRecord(id string, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:            id,
		RunID:         "run-" + id,
		Command:       "analyze_text",
		PresetID:      "standard",
		Status:        domain.RunStatusOK,
		FindingsCount: 2,
		Summary:       map[string]int{"PERSON": 1, "EMAIL": 1},
		RunFolder:     "/runs/" + id,
		Language:      "de",
		StartedAt:     started,
		FinishedAt:    started.Add(3 * time.Second),
	}
}

func TestAppendAndGetRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	record := sampleRecord("a1", started)
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RunID != "run-a1" || got.Command != "analyze_text" || got.Status != domain.RunStatusOK {
		t.Fatalf("record = %+v", got)
	}
	if got.Summary["PERSON"] != 1 || got.Summary["EMAIL"] != 1 {
		t.Fatalf("summary = %v", got.Summary)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, started)
	}
	if !got.FinishedAt.Equal(started.Add(3 * time.Second)) {
		t.Fatalf("finished_at = %v", got.FinishedAt)
	}
}

func TestGetByWorkerRunID(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, sampleRecord("a1", time.Now().UTC())); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := store.Get(ctx, "run-a1")
	if err != nil {
		t.Fatalf("get by run id: %v", err)
	}
	if got.ID != "a1" {
		t.Fatalf("id = %s", got.ID)
	}
}

func TestGetMissingRecord(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "a2", "a3"} {
		if err := store.Append(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].ID != "a3" || records[1].ID != "a2" {
		t.Fatalf("order = %s, %s", records[0].ID, records[1].ID)
	}
}

func TestAppendFailedRunWithoutWorkerRunID(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	record := domain.RunRecord{
		ID:         "f1",
		Command:    "analyze_file",
		PresetID:   "strict",
		Status:     domain.RunStatusError,
		Error:      "engine reported failure: model not found",
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RunID != "" || got.Status != domain.RunStatusError {
		t.Fatalf("record = %+v", got)
	}
	if got.Summary == nil || len(got.Summary) != 0 {
		t.Fatalf("summary must round-trip as empty, got %v", got.Summary)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "veil.db")
	ctx := context.Background()

	first, err := NewSQLiteRunStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Append(ctx, sampleRecord("a1", time.Now().UTC())); err != nil {
		t.Fatalf("append: %v", err)
	}

	second, err := NewSQLiteRunStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	records, err := second.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a1" {
		t.Fatalf("records = %+v", records)
	}
}
