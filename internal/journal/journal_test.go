package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rinktally/internal/stats"
)

func exerciseJournal(t *testing.T, j Journal) {
	t.Helper()
	ctx := context.Background()

	at := time.Date(2026, 10, 19, 19, 30, 0, 0, time.UTC)
	entries := []Entry{
		{RequestID: "a", Kind: KindChange, Player: 4, Stat: stats.PlusMinus, Delta: 1, Previous: 0, Value: 1, At: at},
		{RequestID: "b", Kind: KindChange, Player: 11, Stat: stats.Takeaways, Delta: 1, Previous: 2, Value: 3, At: at.Add(time.Second)},
		{RequestID: "c", Kind: KindUndo, Player: 11, Stat: stats.Takeaways, Delta: -1, Previous: 3, Value: 2, At: at.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s) failed: %v", e.RequestID, err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[0].RequestID != "c" || got[1].RequestID != "b" {
		t.Errorf("Expected newest first [c b], got [%s %s]", got[0].RequestID, got[1].RequestID)
	}
	if got[0].Kind != KindUndo || got[0].Stat != stats.Takeaways || got[0].Delta != -1 || got[0].Value != 2 {
		t.Errorf("Unexpected entry %+v", got[0])
	}
	if !got[0].At.Equal(at.Add(2 * time.Second)) {
		t.Errorf("Expected timestamp %v, got %v", at.Add(2*time.Second), got[0].At)
	}
}

func TestSQLite_RecordAndRecent(t *testing.T) {
	j, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer j.Close()

	exerciseJournal(t, j)
}

func TestSQLite_ReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "activity.db")

	j, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := j.Record(ctx, Entry{RequestID: "r1", Kind: KindReset}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	j.Close()

	j, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer j.Close()

	got, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 || got[0].Kind != KindReset {
		t.Errorf("Expected the reset entry to survive reopen, got %+v", got)
	}
	if got[0].At.IsZero() {
		t.Error("Expected Record to stamp a time")
	}
}

// TestPostgres_RecordAndRecent runs only against a real database
func TestPostgres_RecordAndRecent(t *testing.T) {
	url := os.Getenv("RINK_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("RINK_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	j, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer j.Close()

	if _, err := j.pool.Exec(ctx, "TRUNCATE rink_activity"); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
	exerciseJournal(t, j)
}

func TestNormalizeLimit(t *testing.T) {
	tests := map[int]int{0: DefaultRecentLimit, -5: DefaultRecentLimit, 10: 10, 5000: DefaultRecentLimit}
	for in, want := range tests {
		if got := normalizeLimit(in); got != want {
			t.Errorf("normalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
