package snapshot

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBMigrates(t *testing.T) {
	db := openTestDB(t)

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestDBLoadEmpty(t *testing.T) {
	db := openTestDB(t)

	st, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != nil {
		t.Errorf("state = %+v, want nil before first save", st)
	}
}

func TestDBRoundTrip(t *testing.T) {
	db := openTestDB(t)

	want := sampleState()
	if err := db.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertStateEqual(t, got, want)
}

func TestDBSaveReplacesPriorSnapshot(t *testing.T) {
	db := openTestDB(t)

	first := sampleState()
	if err := db.Save(first); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	// Drop memory 2 and save again; the old row must not survive.
	second := sampleState()
	second.Memories = second.Memories[:1]
	delete(second.AccessHistory, 2)
	delete(second.ImportanceScores, 2)
	second.LastUpdated = first.LastUpdated + 1000
	if err := db.Save(second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertStateEqual(t, got, second)
}

func TestDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := sampleState()
	if err := db.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertStateEqual(t, got, want)
}
