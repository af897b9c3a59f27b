// Package sessions keeps the client's ordered mirror of the server-side
// session list plus the active session pointer. The server list is the
// authority: every mutation round-trips through the backend and only then
// patches the local copy with the acknowledged result.
package sessions

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lqviet/vichat/internal/core/db"
	"github.com/lqviet/vichat/internal/core/models"
	"github.com/lqviet/vichat/pkg/chatapi"
)

// Store mirrors the server's session list for one user, newest first. The
// order is exactly the server's returned order; the client never re-sorts by
// any other key.
type Store struct {
	api *chatapi.Client
	db  *db.DB
	log *zap.Logger

	mu       sync.Mutex
	sessions []models.Session
	activeID string
}

// NewStore creates an empty store bound to the API client and local cache.
func NewStore(api *chatapi.Client, database *db.DB, logger *zap.Logger) *Store {
	return &Store{
		api: api,
		db:  database,
		log: logger,
	}
}

// LoadCache seeds the store from the persisted snapshot of the last run, so
// the UI has a list to show before the first fresh fetch lands. The first
// Refresh replaces it wholesale.
func (s *Store) LoadCache() []models.Session {
	cached, err := s.db.LoadSessionCache()
	if err != nil {
		s.log.Warn("failed to load session cache", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.sessions = cached
	s.mu.Unlock()
	return cached
}

// Refresh fetches the list from the backend and replaces the local copy
// atomically. No partial merge.
func (s *Store) Refresh(ctx context.Context) ([]models.Session, error) {
	list, err := s.api.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	fresh := models.SessionsFromAPI(list)

	s.mu.Lock()
	s.sessions = fresh
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.db.SaveSessionCache(snapshot); err != nil {
		s.log.Warn("failed to persist session cache", zap.Error(err))
	}
	return snapshot, nil
}

// Sessions returns a copy of the local ordered list.
func (s *Store) Sessions() []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of sessions in the local copy.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Active returns the id of the current session; false when none is selected.
func (s *Store) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// SetActive points the client at one session. The id does not have to exist
// locally yet; a concurrent refresh may still be in flight.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
}

// ClearActive drops the active pointer.
func (s *Store) ClearActive() {
	s.SetActive("")
}

// Create makes a new session owned by userID and inserts it at the front of
// the local copy. The new session becomes the active one. A blank title gets
// the default "Phiên N" name.
func (s *Store) Create(ctx context.Context, userID, title string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, &chatapi.ValidationError{Detail: "not logged in"}
	}
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Phiên %d", s.Len()+1)
	}

	created, err := s.api.CreateSession(ctx, userID, title)
	if err != nil {
		return models.Session{}, err
	}
	session := models.SessionFromAPI(*created)

	s.mu.Lock()
	s.sessions = append([]models.Session{session}, s.sessions...)
	s.activeID = session.ID
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.db.SaveSessionCache(snapshot); err != nil {
		s.log.Warn("failed to persist session cache", zap.Error(err))
	}
	s.log.Info("session created", zap.String("session_id", session.ID))
	return session, nil
}

// Rename updates a session's title on the server and patches the matching
// local entry with the acknowledged result. When the entry is no longer
// present locally the patch is a silent no-op.
func (s *Store) Rename(ctx context.Context, id, title string) (models.Session, error) {
	updated, err := s.api.UpdateSession(ctx, id, title)
	if err != nil {
		return models.Session{}, err
	}
	session := models.SessionFromAPI(*updated)

	s.mu.Lock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].Title = session.Title
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.db.SaveSessionCache(snapshot); err != nil {
		s.log.Warn("failed to persist session cache", zap.Error(err))
	}
	return session, nil
}

// Delete removes a session on the server and locally. When the deleted
// session was the active one, the pointer moves to the next-most-recent
// remaining session; nextActive is its id, empty when no sessions remain.
// wasActive tells the caller whether the displayed transcript is now stale.
func (s *Store) Delete(ctx context.Context, id string) (nextActive string, wasActive bool, err error) {
	if err := s.api.DeleteSession(ctx, id); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	s.sessions = kept

	wasActive = s.activeID == id
	if wasActive {
		s.activeID = ""
		if len(s.sessions) > 0 {
			s.activeID = s.sessions[0].ID
		}
	}
	nextActive = s.activeID
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.db.SaveSessionCache(snapshot); err != nil {
		s.log.Warn("failed to persist session cache", zap.Error(err))
	}
	s.log.Info("session deleted", zap.String("session_id", id))
	return nextActive, wasActive, nil
}

// Get returns the local entry for id.
func (s *Store) Get(id string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ID == id {
			return session, true
		}
	}
	return models.Session{}, false
}

// Clear drops all local state, for logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.sessions = nil
	s.activeID = ""
	s.mu.Unlock()
}

func (s *Store) snapshotLocked() []models.Session {
	out := make([]models.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}
