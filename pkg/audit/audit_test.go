package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// storeUnderTest runs the shared Store conformance cases against any
// backend.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	records := []*Record{
		{Timestamp: base, UserID: "alice", Action: ActionTokenVerified, Result: ResultSuccess},
		{Timestamp: base.Add(time.Minute), UserID: "bob", Action: ActionRateLimited, Resource: "user", Result: ResultDenied,
			Detail: map[string]any{"limit": float64(60)}},
		{Timestamp: base.Add(2 * time.Minute), UserID: "alice", Action: ActionPermissionDenied, Resource: "manage_rules", Result: ResultDenied},
	}
	for _, r := range records {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	t.Run("query all newest first", func(t *testing.T) {
		got, err := store.Query(ctx, QueryFilter{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Query returned %d records, want 3", len(got))
		}
		if got[0].Action != ActionPermissionDenied {
			t.Errorf("First record action = %s, want newest (auth.permission_denied)", got[0].Action)
		}
	})

	t.Run("filter by user", func(t *testing.T) {
		got, err := store.Query(ctx, QueryFilter{UserID: "alice"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("alice records = %d, want 2", len(got))
		}
	})

	t.Run("filter by action", func(t *testing.T) {
		got, err := store.Query(ctx, QueryFilter{Action: ActionRateLimited})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("rate limited records = %d, want 1", len(got))
		}
		if got[0].Detail["limit"] != float64(60) {
			t.Errorf("Detail[limit] = %v, want 60", got[0].Detail["limit"])
		}
	})

	t.Run("filter by time range", func(t *testing.T) {
		got, err := store.Query(ctx, QueryFilter{Since: base.Add(30 * time.Second)})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("records since base+30s = %d, want 2", len(got))
		}
	})

	t.Run("limit caps results", func(t *testing.T) {
		got, err := store.Query(ctx, QueryFilter{Limit: 1})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("limited query = %d records, want 1", len(got))
		}
	})

	t.Run("purge removes old records", func(t *testing.T) {
		removed, err := store.Purge(ctx, base.Add(90*time.Second))
		if err != nil {
			t.Fatalf("Purge: %v", err)
		}
		if removed != 2 {
			t.Errorf("Purge removed %d, want 2", removed)
		}

		got, _ := store.Query(ctx, QueryFilter{})
		if len(got) != 1 {
			t.Errorf("records after purge = %d, want 1", len(got))
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore(100))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	storeUnderTest(t, store)
}

func TestMemoryStore_Bounded(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Append(ctx, &Record{Action: ActionTokenVerified, Result: ResultSuccess})
	}
	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2 (oldest evicted)", store.Len())
	}
}

func TestRecorder_SweepPurgesPastRetention(t *testing.T) {
	store := NewMemoryStore(100)
	recorder := NewRecorder(store, time.Hour, nil)
	ctx := context.Background()

	store.Append(ctx, &Record{Timestamp: time.Now().Add(-2 * time.Hour), Action: ActionTokenVerified, Result: ResultSuccess})
	store.Append(ctx, &Record{Timestamp: time.Now(), Action: ActionTokenVerified, Result: ResultSuccess})

	recorder.Sweep(ctx)

	if store.Len() != 1 {
		t.Errorf("records after sweep = %d, want 1", store.Len())
	}
}

func TestRecorder_FillsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore(100)
	recorder := NewRecorder(store, 0, nil)
	ctx := context.Background()

	recorder.Record(ctx, &Record{Action: ActionReviewRequested, Result: ResultSuccess})

	got, _ := store.Query(ctx, QueryFilter{})
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Error("Record ID was not assigned")
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Record timestamp was not assigned")
	}
}
