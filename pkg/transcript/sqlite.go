package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists transcripts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	model         TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	started_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS exchanges (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq        INTEGER NOT NULL,
	prompt     TEXT NOT NULL,
	reply      TEXT NOT NULL,
	model      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
`

// NewSQLiteStore opens (creating if needed) a transcript database at path.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, model, system_prompt, started_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Model, sess.SystemPrompt, sess.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendExchange(ctx context.Context, e Exchange) error {
	if _, err := s.GetSession(ctx, e.SessionID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, session_id, seq, prompt, reply, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Seq, e.Prompt, e.Reply, e.Model, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, model, system_prompt, started_at FROM sessions ORDER BY started_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt time.Time
		if err := rows.Scan(&sess.ID, &sess.Model, &sess.SystemPrompt, &startedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt = startedAt
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	var startedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT id, model, system_prompt, started_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Model, &sess.SystemPrompt, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound{ID: id}
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	sess.StartedAt = startedAt
	return sess, nil
}

func (s *SQLiteStore) Exchanges(ctx context.Context, sessionID string) ([]Exchange, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, seq, prompt, reply, model, created_at
		 FROM exchanges WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Prompt, &e.Reply, &e.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		e.CreatedAt = createdAt
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Assert that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
