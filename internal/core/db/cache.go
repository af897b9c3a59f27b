package db

import (
	"time"

	"github.com/lqviet/vichat/internal/core/models"
)

// SaveSessionCache replaces the cached session list snapshot with the given
// one, preserving order by position.
func (db *DB) SaveSessionCache(sessions []models.Session) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM session_cache`); err != nil {
		return err
	}
	for i, s := range sessions {
		if _, err := tx.Exec(`
			INSERT INTO session_cache (position, id, title, started_at) VALUES (?, ?, ?, ?)
		`, i, s.ID, s.Title, s.StartedAt.UTC()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadSessionCache returns the last persisted session list in stored order.
func (db *DB) LoadSessionCache() ([]models.Session, error) {
	rows, err := db.conn.Query(`SELECT id, title, started_at FROM session_cache ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var startedAt time.Time
		if err := rows.Scan(&s.ID, &s.Title, &startedAt); err != nil {
			return nil, err
		}
		s.StartedAt = startedAt
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
