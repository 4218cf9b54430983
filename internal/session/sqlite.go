// Package session stores chat transcripts in SQLite so a conversation
// survives the process and can be listed or exported later.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/halcyon-labs/assistant-builder/internal/llm"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    assistant TEXT,
    backend TEXT NOT NULL,
    model TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id, sequence);
`

// Session is one stored conversation.
type Session struct {
	ID        string    `json:"id"`
	Assistant string    `json:"assistant,omitempty"`
	Backend   string    `json:"backend"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a SQLite-backed transcript store.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create starts a new session and returns it.
func (s *Store) Create(assistant, backend, model string) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		Assistant: assistant,
		Backend:   backend,
		Model:     model,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, assistant, backend, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Assistant, sess.Backend, sess.Model, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Append adds one turn to a session's transcript.
func (s *Store) Append(sessionID string, msg llm.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM messages WHERE session_id = ?`, sessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO messages (session_id, role, content, sequence) VALUES (?, ?, ?, ?)`,
		sessionID, string(msg.Role), msg.Content, next,
	); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now().UTC(), sessionID,
	); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return tx.Commit()
}

// Messages returns a session's transcript in conversation order.
func (s *Store) Messages(sessionID string) ([]llm.Message, error) {
	rows, err := s.db.Query(
		`SELECT role, content FROM messages WHERE session_id = ? ORDER BY sequence`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []llm.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		messages = append(messages, llm.Message{Role: llm.Role(role), Content: content})
	}
	return messages, rows.Err()
}

// List returns sessions, most recently touched first.
func (s *Store) List() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, assistant, backend, model, created_at, updated_at FROM sessions ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Assistant, &sess.Backend, &sess.Model, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Export renders a session's transcript as indented JSON, an array of
// role/content turns.
func (s *Store) Export(sessionID string) ([]byte, error) {
	messages, err := s.Messages(sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []llm.Message{}
	}
	return json.MarshalIndent(messages, "", "  ")
}

// Delete removes a session and, via the foreign key cascade, its
// transcript.
func (s *Store) Delete(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}
