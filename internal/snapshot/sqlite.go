package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kh1ye/memory/internal/memory"
)

// DB persists the snapshot in a SQLite database. Save clears and rewrites
// all tables in one transaction, keeping the full-snapshot semantics of the
// port while surviving concurrent readers via WAL.
type DB struct {
	*sql.DB
	Path string
}

// Open opens (or creates) the SQLite snapshot store at the given path,
// configures pragmas, and runs migrations.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{DB: sqlDB, Path: path}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory SQLite store for testing.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}

	db := &DB{DB: sqlDB, Path: ":memory:"}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "memories, access_history, importance_scores",
		SQL: `
CREATE TABLE memories (
    id              INTEGER PRIMARY KEY,
    type            TEXT NOT NULL,
    content         TEXT NOT NULL,
    extracted_info  TEXT,
    confidence      REAL NOT NULL,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL,
    access_count    INTEGER NOT NULL DEFAULT 0,
    importance      REAL NOT NULL DEFAULT 0.5,
    update_history  TEXT,
    context         TEXT
);

CREATE TABLE access_history (
    memory_id  INTEGER NOT NULL,
    ts         INTEGER NOT NULL,
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX idx_access_memory ON access_history(memory_id);

CREATE TABLE importance_scores (
    memory_id  INTEGER PRIMARY KEY,
    score      REAL NOT NULL,
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE TABLE snapshot_meta (
    key    TEXT PRIMARY KEY,
    value  TEXT NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}

// Load reads the full snapshot. An empty database (never saved) returns
// (nil, nil).
func (db *DB) Load() (*memory.State, error) {
	var saved int
	if err := db.QueryRow("SELECT COUNT(*) FROM snapshot_meta WHERE key = 'last_updated'").Scan(&saved); err != nil {
		return nil, fmt.Errorf("check snapshot meta: %w", err)
	}
	if saved == 0 {
		return nil, nil
	}

	st := &memory.State{
		AccessHistory:    make(map[int][]int64),
		ImportanceScores: make(map[int]float64),
	}

	rows, err := db.Query(`
		SELECT id, type, content, extracted_info, confidence, created_at, updated_at,
			access_count, importance, update_history, context
		FROM memories ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m memory.Memory
		var typ string
		var extracted, history, contextDoc sql.NullString
		if err := rows.Scan(&m.ID, &typ, &m.Content, &extracted, &m.Confidence,
			&m.CreatedAt, &m.UpdatedAt, &m.AccessCount, &m.ImportanceScore,
			&history, &contextDoc); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.Type = memory.Type(typ)
		if extracted.Valid && extracted.String != "" {
			m.ExtractedInfo = json.RawMessage(extracted.String)
		}
		if history.Valid && history.String != "" {
			if err := json.Unmarshal([]byte(history.String), &m.UpdateHistory); err != nil {
				return nil, fmt.Errorf("parse update history for %d: %w", m.ID, err)
			}
		}
		if contextDoc.Valid && contextDoc.String != "" {
			if err := json.Unmarshal([]byte(contextDoc.String), &m.Context); err != nil {
				return nil, fmt.Errorf("parse context for %d: %w", m.ID, err)
			}
		}
		st.Memories = append(st.Memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	accessRows, err := db.Query("SELECT memory_id, ts FROM access_history ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("load access history: %w", err)
	}
	defer accessRows.Close()
	for accessRows.Next() {
		var id int
		var ts int64
		if err := accessRows.Scan(&id, &ts); err != nil {
			return nil, fmt.Errorf("scan access: %w", err)
		}
		st.AccessHistory[id] = append(st.AccessHistory[id], ts)
	}
	if err := accessRows.Err(); err != nil {
		return nil, err
	}

	scoreRows, err := db.Query("SELECT memory_id, score FROM importance_scores")
	if err != nil {
		return nil, fmt.Errorf("load importance scores: %w", err)
	}
	defer scoreRows.Close()
	for scoreRows.Next() {
		var id int
		var score float64
		if err := scoreRows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		st.ImportanceScores[id] = score
	}
	if err := scoreRows.Err(); err != nil {
		return nil, err
	}

	// Every memory has index entries even when empty
	for _, m := range st.Memories {
		if _, ok := st.AccessHistory[m.ID]; !ok {
			st.AccessHistory[m.ID] = []int64{}
		}
	}

	var lastUpdated string
	if err := db.QueryRow("SELECT value FROM snapshot_meta WHERE key = 'last_updated'").Scan(&lastUpdated); err == nil {
		fmt.Sscanf(lastUpdated, "%d", &st.LastUpdated)
	}

	return st, nil
}

// Save rewrites the full snapshot in one transaction.
func (db *DB) Save(st *memory.State) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"access_history", "importance_scores", "memories"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i := range st.Memories {
		m := &st.Memories[i]

		var history, contextDoc any
		if len(m.UpdateHistory) > 0 {
			enc, err := json.Marshal(m.UpdateHistory)
			if err != nil {
				return fmt.Errorf("encode update history for %d: %w", m.ID, err)
			}
			history = string(enc)
		}
		if len(m.Context) > 0 {
			enc, err := json.Marshal(m.Context)
			if err != nil {
				return fmt.Errorf("encode context for %d: %w", m.ID, err)
			}
			contextDoc = string(enc)
		}

		var extracted any
		if len(m.ExtractedInfo) > 0 {
			extracted = string(m.ExtractedInfo)
		}

		if _, err := tx.Exec(`
			INSERT INTO memories (id, type, content, extracted_info, confidence,
				created_at, updated_at, access_count, importance, update_history, context)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, string(m.Type), m.Content, extracted, m.Confidence,
			m.CreatedAt, m.UpdatedAt, m.AccessCount, m.ImportanceScore,
			history, contextDoc); err != nil {
			return fmt.Errorf("insert memory %d: %w", m.ID, err)
		}
	}

	for id, timestamps := range st.AccessHistory {
		for _, ts := range timestamps {
			if _, err := tx.Exec(
				"INSERT INTO access_history (memory_id, ts) VALUES (?, ?)", id, ts,
			); err != nil {
				return fmt.Errorf("insert access for %d: %w", id, err)
			}
		}
	}

	for id, score := range st.ImportanceScores {
		if _, err := tx.Exec(
			"INSERT INTO importance_scores (memory_id, score) VALUES (?, ?)", id, score,
		); err != nil {
			return fmt.Errorf("insert score for %d: %w", id, err)
		}
	}

	lastUpdated := st.LastUpdated
	if lastUpdated == 0 {
		lastUpdated = time.Now().UnixMilli()
	}
	if _, err := tx.Exec(`
		INSERT INTO snapshot_meta (key, value) VALUES ('last_updated', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprint(lastUpdated)); err != nil {
		return fmt.Errorf("record last_updated: %w", err)
	}

	return tx.Commit()
}
