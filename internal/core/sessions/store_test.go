package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lqviet/vichat/internal/core/db"
	"github.com/lqviet/vichat/internal/core/models"
	"github.com/lqviet/vichat/pkg/chatapi"
)

// fakeBackend is an in-memory sessions endpoint: newest first, like the real
// server's started_at descending order.
type fakeBackend struct {
	mu       sync.Mutex
	sessions []map[string]any
	nextID   int
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/sessions/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		rest := strings.TrimPrefix(r.URL.Path, "/chat/sessions/")
		switch {
		case rest == "" && r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(f.sessions)
		case rest == "" && r.Method == http.MethodPost:
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			f.nextID++
			session := map[string]any{
				"id":            fmt.Sprintf("s%d", f.nextID),
				"user_id":       req["user_id"],
				"session_title": req["session_title"],
				"started_at":    time.Now().UTC().Format(time.RFC3339),
				"is_active":     true,
			}
			f.sessions = append([]map[string]any{session}, f.sessions...)
			_ = json.NewEncoder(w).Encode(session)
		case r.Method == http.MethodPut:
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			for _, session := range f.sessions {
				if session["id"] == rest {
					session["session_title"] = req["session_title"]
					_ = json.NewEncoder(w).Encode(session)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"Không tìm thấy session"}`)
		case r.Method == http.MethodDelete:
			for i, session := range f.sessions {
				if session["id"] == rest {
					f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
					fmt.Fprint(w, `{"success":true}`)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"Không tìm thấy session"}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func testStore(t *testing.T) (*Store, *chatapi.Client, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	tmpfile, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := db.New(tmpfile.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	client := chatapi.NewClient(server.URL, time.Second)
	client.SetToken("tok")
	return NewStore(client, database, zap.NewNop()), client, backend
}

// localEqualsServer asserts the invariant: the local ordered copy equals the
// server's list returned by a fresh fetch.
func localEqualsServer(t *testing.T, store *Store, client *chatapi.Client) {
	t.Helper()
	list, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	fresh := models.SessionsFromAPI(list)

	local := store.Sessions()
	require.Len(t, local, len(fresh))
	for i := range fresh {
		assert.Equal(t, fresh[i].ID, local[i].ID, "position %d", i)
		assert.Equal(t, fresh[i].Title, local[i].Title, "position %d", i)
	}
}

func TestCreateBecomesActiveFront(t *testing.T) {
	store, client, _ := testStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)
	second, err := store.Create(ctx, "u-1", "Session 2")
	require.NoError(t, err)

	local := store.Sessions()
	require.Len(t, local, 2)
	assert.Equal(t, second.ID, local[0].ID, "new session goes to the front")
	assert.Equal(t, first.ID, local[1].ID)

	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, second.ID, active)

	localEqualsServer(t, store, client)
}

func TestCreateDefaultTitle(t *testing.T) {
	store, _, _ := testStore(t)

	session, err := store.Create(context.Background(), "u-1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Phiên 1", session.Title)
}

func TestCreateRequiresUser(t *testing.T) {
	store, _, _ := testStore(t)

	_, err := store.Create(context.Background(), "", "x")
	var valErr *chatapi.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestRenameRoundTrip(t *testing.T) {
	store, client, _ := testStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)

	_, err = store.Rename(ctx, session.ID, "X")
	require.NoError(t, err)

	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, "X", got.Title)

	localEqualsServer(t, store, client)
}

func TestRenameMissingLocalEntryIsNoOp(t *testing.T) {
	store, _, backend := testStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)

	// Another window replaced our local copy; the entry is gone locally but
	// still exists server-side.
	store.Clear()
	_ = backend // server copy untouched

	_, err = store.Rename(ctx, session.ID, "X")
	require.NoError(t, err, "rename of a locally-absent session must not fail")
	assert.Equal(t, 0, store.Len())
}

func TestDeleteActivePromotesNext(t *testing.T) {
	store, client, _ := testStore(t)
	ctx := context.Background()

	older, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)
	newest, err := store.Create(ctx, "u-1", "Session 2")
	require.NoError(t, err)

	next, wasActive, err := store.Delete(ctx, newest.ID)
	require.NoError(t, err)
	assert.True(t, wasActive)
	assert.Equal(t, older.ID, next, "next-most-recent becomes active")

	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, older.ID, active)

	localEqualsServer(t, store, client)
}

func TestDeleteLastSessionClearsActive(t *testing.T) {
	store, _, _ := testStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)

	next, wasActive, err := store.Delete(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, wasActive)
	assert.Empty(t, next)

	_, ok := store.Active()
	assert.False(t, ok, "active pointer must be cleared")
}

func TestDeleteInactiveKeepsPointer(t *testing.T) {
	store, client, _ := testStore(t)
	ctx := context.Background()

	older, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)
	newest, err := store.Create(ctx, "u-1", "Session 2")
	require.NoError(t, err)

	_, wasActive, err := store.Delete(ctx, older.ID)
	require.NoError(t, err)
	assert.False(t, wasActive)

	active, _ := store.Active()
	assert.Equal(t, newest.ID, active)

	localEqualsServer(t, store, client)
}

func TestRefreshReplacesAtomically(t *testing.T) {
	store, client, backend := testStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)

	// Server state changes behind our back
	backend.mu.Lock()
	backend.sessions = append([]map[string]any{{
		"id": "remote", "user_id": "u-1", "session_title": "From elsewhere",
		"started_at": time.Now().UTC().Format(time.RFC3339), "is_active": true,
	}}, backend.sessions...)
	backend.mu.Unlock()

	fresh, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "remote", fresh[0].ID, "server order preserved, no client-side re-sort")

	localEqualsServer(t, store, client)
}

func TestCacheSurvivesRestart(t *testing.T) {
	store, client, _ := testStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "u-1", "Session 1")
	require.NoError(t, err)
	_, err = store.Refresh(ctx)
	require.NoError(t, err)

	// A new store over the same database sees the snapshot without a fetch.
	restarted := NewStore(client, store.db, zap.NewNop())
	cached := restarted.LoadCache()
	require.Len(t, cached, 1)
	assert.Equal(t, "Session 1", cached[0].Title)
}
