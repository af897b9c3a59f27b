// Package app wires the client's components together. One App instance is
// the single owner of the shared state: API client, credential gate, session
// store, and transcript. Components never reach for globals; they get their
// dependencies from here.
package app

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lqviet/vichat/internal/core/auth"
	"github.com/lqviet/vichat/internal/core/config"
	"github.com/lqviet/vichat/internal/core/db"
	"github.com/lqviet/vichat/internal/core/logging"
	"github.com/lqviet/vichat/internal/core/sessions"
	"github.com/lqviet/vichat/internal/core/transcript"
	"github.com/lqviet/vichat/pkg/chatapi"
)

type App struct {
	Config     *config.Config
	DB         *db.DB
	Log        *zap.Logger
	API        *chatapi.Client
	Gate       *auth.Gate
	Sessions   *sessions.Store
	Transcript *transcript.Transcript
}

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ServerURL string
	DBPath    string
	Verbose   bool
}

// New loads config and builds the full component graph.
func New(opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	logger, err := logging.New(filepath.Join(config.Dir(), "vichat.log"), opts.Verbose)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	api := chatapi.NewClient(cfg.ServerURL, cfg.RequestTimeout)

	return &App{
		Config:     cfg,
		DB:         database,
		Log:        logger,
		API:        api,
		Gate:       auth.NewGate(api, database, logger, cfg.RefreshInterval),
		Sessions:   sessions.NewStore(api, database, logger),
		Transcript: transcript.New(api, logger),
	}, nil
}

// Close releases the database and flushes the log.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}

// Reset drops all per-user state, for logout and forced logout.
func (a *App) Reset() {
	a.Sessions.Clear()
	a.Transcript.Clear()
}
