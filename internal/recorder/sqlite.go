package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets ad-hoc readers query while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS windows (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			date       TEXT NOT NULL,
			start_at   INTEGER NOT NULL,
			end_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_date ON windows(date)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			outcome         TEXT NOT NULL,
			nickname        TEXT,
			team            TEXT,
			amount          INTEGER,
			worker_share    TEXT,
			tx_id           TEXT,
			origin          TEXT,
			fallback_render INTEGER,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_ts ON posts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordWindow(evt *WindowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO windows (timestamp, date, start_at, end_at) VALUES (?,?,?,?)`,
		r.now().Unix(), evt.Date, evt.Start.Unix(), evt.End.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordPost(evt *PostEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO posts
		(timestamp, outcome, nickname, team, amount, worker_share, tx_id, origin, fallback_render, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.Outcome, evt.Nickname, evt.Team, evt.Amount,
		evt.WorkerShare, evt.TxID, evt.Origin, evt.FallbackRender, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
