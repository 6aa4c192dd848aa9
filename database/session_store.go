package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionSnapshot is one persisted presentation: the canonical HTML plus
// the metadata the session list needs.
type SessionSnapshot struct {
	SessionID  string    `json:"session_id"`
	Title      string    `json:"title"`
	HTML       string    `json:"html"`
	SlideCount int       `json:"slide_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionStore persists deck snapshots so sessions survive restarts. The
// in-memory model is always rebuilt from the canonical HTML on resume.
type SessionStore struct {
	db     *sql.DB
	logger func(string)
}

// NewSessionStore creates a SessionStore backed by an initialized database.
func NewSessionStore(db *sql.DB, logger func(string)) *SessionStore {
	return &SessionStore{db: db, logger: logger}
}

// Save upserts a session's snapshot.
func (s *SessionStore) Save(snap SessionSnapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO deck_sessions (session_id, title, html, slide_count, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			title = excluded.title,
			html = excluded.html,
			slide_count = excluded.slide_count,
			updated_at = CURRENT_TIMESTAMP
	`, snap.SessionID, snap.Title, snap.HTML, snap.SlideCount)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", snap.SessionID, err)
	}
	s.log(fmt.Sprintf("[STORE] Saved session %s (%d slides, %d bytes)", snap.SessionID, snap.SlideCount, len(snap.HTML)))
	return nil
}

// Load returns a session's snapshot, or (nil, nil) when it does not exist.
func (s *SessionStore) Load(sessionID string) (*SessionSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT session_id, title, html, slide_count, updated_at
		FROM deck_sessions WHERE session_id = ?
	`, sessionID)

	var snap SessionSnapshot
	err := row.Scan(&snap.SessionID, &snap.Title, &snap.HTML, &snap.SlideCount, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return &snap, nil
}

// Delete removes a session's snapshot. Deleting a missing session is not an
// error.
func (s *SessionStore) Delete(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM deck_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// List returns all persisted sessions ordered by last update, newest first,
// with the HTML omitted (the list view only needs metadata).
func (s *SessionStore) List() ([]SessionSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT session_id, title, slide_count, updated_at
		FROM deck_sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSnapshot
	for rows.Next() {
		var snap SessionSnapshot
		if err := rows.Scan(&snap.SessionID, &snap.Title, &snap.SlideCount, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SessionStore) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}
