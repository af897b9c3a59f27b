// Package auth owns the credential lifecycle: login, registration, the
// periodic token refresh loop, and the forced-logout path when the backend
// stops honoring the token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lqviet/vichat/internal/core/db"
	"github.com/lqviet/vichat/internal/core/models"
	"github.com/lqviet/vichat/pkg/chatapi"
)

// Gate holds the bearer credential and the cached user, persists both across
// runs, and refreshes the token on a fixed timer while authenticated.
type Gate struct {
	api      *chatapi.Client
	db       *db.DB
	log      *zap.Logger
	interval time.Duration

	mu       sync.Mutex
	user     *models.User
	stop     chan struct{}
	onExpire func()
}

// NewGate wires the gate to the API client and local state store. interval
// is the refresh period; zero means the default ten minutes.
func NewGate(api *chatapi.Client, database *db.DB, logger *zap.Logger, interval time.Duration) *Gate {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Gate{
		api:      api,
		db:       database,
		log:      logger,
		interval: interval,
	}
}

// OnExpire registers a callback invoked after a forced logout, so the UI can
// drop back to the unauthenticated state. Must be set before the refresh
// loop can fire, i.e. before Login or Resume.
func (g *Gate) OnExpire(fn func()) {
	g.mu.Lock()
	g.onExpire = fn
	g.mu.Unlock()
}

// Login exchanges credentials for a token, fetches the user profile, persists
// both, and starts the refresh loop.
func (g *Gate) Login(ctx context.Context, email, password string) (models.User, error) {
	if _, err := g.api.Login(ctx, email, password); err != nil {
		return models.User{}, err
	}

	apiUser, err := g.api.Me(ctx)
	if err != nil {
		g.api.ClearToken()
		return models.User{}, err
	}
	user := models.UserFromAPI(*apiUser)

	if err := g.persist(user); err != nil {
		g.log.Warn("failed to persist credential", zap.Error(err))
	}

	g.mu.Lock()
	g.user = &user
	g.startRefreshLocked()
	g.mu.Unlock()

	g.log.Info("logged in", zap.String("user_id", user.ID))
	return user, nil
}

// Register creates an account. It does not log the new user in.
func (g *Gate) Register(ctx context.Context, email, password, fullName string) (string, error) {
	return g.api.Register(ctx, email, password, fullName)
}

// Resume restores a persisted credential from a previous run. The token is
// validated against /auth/me; a rejected token is discarded silently and
// Resume reports no session. Transport errors are returned so the caller can
// distinguish "logged out" from "offline".
func (g *Gate) Resume(ctx context.Context) (models.User, bool, error) {
	token, ok, err := g.db.Get(db.KeyAuthToken)
	if err != nil {
		return models.User{}, false, fmt.Errorf("read stored credential: %w", err)
	}
	if !ok || token == "" {
		return models.User{}, false, nil
	}

	g.api.SetToken(token)
	apiUser, err := g.api.Me(ctx)
	if err != nil {
		var authErr *chatapi.AuthError
		if errors.As(err, &authErr) {
			g.log.Info("stored token rejected, discarding")
			g.api.ClearToken()
			if derr := g.db.Delete(db.KeyAuthToken, db.KeyUserInfo); derr != nil {
				g.log.Warn("failed to clear stored credential", zap.Error(derr))
			}
			return models.User{}, false, nil
		}
		g.api.ClearToken()
		return models.User{}, false, err
	}
	user := models.UserFromAPI(*apiUser)

	if err := g.persist(user); err != nil {
		g.log.Warn("failed to persist credential", zap.Error(err))
	}

	g.mu.Lock()
	g.user = &user
	g.startRefreshLocked()
	g.mu.Unlock()

	return user, true, nil
}

// CurrentUser returns the cached user. The second result is false when no
// one is logged in.
func (g *Gate) CurrentUser() (models.User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return models.User{}, false
	}
	return *g.user, true
}

// Authenticated reports whether a credential is currently held.
func (g *Gate) Authenticated() bool {
	_, ok := g.CurrentUser()
	return ok
}

// Logout clears the credential, the cached user, and the persisted copies,
// and cancels the refresh timer. Idempotent.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.user = nil
	g.stopRefreshLocked()
	g.mu.Unlock()

	g.api.ClearToken()
	if err := g.db.Delete(db.KeyAuthToken, db.KeyUserInfo); err != nil {
		g.log.Warn("failed to clear stored credential", zap.Error(err))
	}
}

// persist writes the credential and user profile to the local store, keyed
// by the same fixed names the browser client used.
func (g *Gate) persist(user models.User) error {
	if err := g.db.Set(db.KeyAuthToken, g.api.Token()); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return g.db.Set(db.KeyUserInfo, string(data))
}

func (g *Gate) startRefreshLocked() {
	if g.stop != nil {
		return // already running
	}
	stop := make(chan struct{})
	g.stop = stop
	go g.refreshLoop(stop)
}

func (g *Gate) stopRefreshLocked() {
	if g.stop != nil {
		close(g.stop)
		g.stop = nil
	}
}

// refreshLoop replaces the token every interval. A token the backend rejects
// forces a logout: a stale credential would otherwise make every subsequent
// request fail in a loop.
func (g *Gate) refreshLoop(stop chan struct{}) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_, err := g.api.Refresh(ctx)
			cancel()
			if err == nil {
				if perr := g.db.Set(db.KeyAuthToken, g.api.Token()); perr != nil {
					g.log.Warn("failed to persist refreshed token", zap.Error(perr))
				}
				g.log.Debug("token refreshed")
				continue
			}

			var authErr *chatapi.AuthError
			if errors.As(err, &authErr) {
				g.log.Info("token refresh rejected, forcing logout", zap.String("detail", authErr.Detail))
				g.forceLogout()
				return
			}
			// Transient failure: keep the current token and try again on
			// the next tick.
			g.log.Warn("token refresh failed", zap.Error(err))
		}
	}
}

// forceLogout runs the same sequence as Logout and then notifies the UI.
func (g *Gate) forceLogout() {
	g.mu.Lock()
	g.user = nil
	// The loop goroutine exits by itself; just forget the channel so a
	// later Login starts a fresh one.
	if g.stop != nil {
		close(g.stop)
		g.stop = nil
	}
	fn := g.onExpire
	g.mu.Unlock()

	g.api.ClearToken()
	if err := g.db.Delete(db.KeyAuthToken, db.KeyUserInfo); err != nil {
		g.log.Warn("failed to clear stored credential", zap.Error(err))
	}
	if fn != nil {
		fn()
	}
}
