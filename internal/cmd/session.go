package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/config"
	"github.com/lotas/tabdedupe/internal/controller"
	"github.com/lotas/tabdedupe/internal/firefox"
	"github.com/lotas/tabdedupe/internal/review"
	"github.com/lotas/tabdedupe/internal/server"
	"github.com/lotas/tabdedupe/internal/storage"
)

// session is everything one command run needs: config, database, the tab
// source and the controller on top.
type session struct {
	cfg   *config.Config
	db    *sql.DB
	store *storage.Store
	ctrl  *controller.Controller
	// srv is nil for the offline Firefox source.
	srv    *server.Server
	source string

	stop func()
}

// openSession wires a session. In live mode it starts the extension
// WebSocket server in the background; it is stopped by close.
func openSession(ctx context.Context) (*session, error) {
	cfg, db, err := openDB()
	if err != nil {
		return nil, err
	}
	store := storage.NewStore(db)

	s := &session{cfg: cfg, db: db, store: store, stop: func() {}}

	var browser controller.Browser
	if offline || cfg.Profile != "" {
		src, label, err := offlineSource(cfg.Profile)
		if err != nil {
			db.Close()
			return nil, err
		}
		browser = src
		s.source = label
	} else {
		srv := server.New(cfg.Port, cfg.HostTimeout)
		srvCtx, cancel := context.WithCancel(ctx)
		go func() {
			if err := srv.ListenAndServe(srvCtx); err != nil {
				applog.Error("ws.listen", err, "port", cfg.Port)
			}
		}()
		browser = server.NewBridge(srv)
		s.srv = srv
		s.source = fmt.Sprintf("live :%d", cfg.Port)
		s.stop = cancel
	}

	tracker := review.NewTracker(store, cfg.Review.URL,
		review.WithThreshold(cfg.Review.Threshold),
		review.WithInterval(cfg.Review.Interval()),
	)
	s.ctrl = controller.New(browser, store, controller.Options{
		Filter: analyzer.PageFilter{InternalPrefixes: cfg.InternalPrefixes},
		Review: tracker,
		Log:    store,
	})
	s.ctrl.LoadPreferences(ctx)
	applog.Info("session.open", "source", s.source)
	return s, nil
}

// openDB loads the config, starts file logging and opens the database.
// Commands that only touch stored state use it without a tab source.
func openDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(vp)
	if err != nil {
		return nil, nil, err
	}
	if err := applog.Init(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		if dbPath, err = storage.DefaultDBPath(); err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func offlineSource(profileName string) (*firefox.Source, string, error) {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return nil, "", fmt.Errorf("discover profiles: %w", err)
	}
	p, err := firefox.SelectProfile(profiles, profileName)
	if err != nil {
		return nil, "", err
	}
	return firefox.NewSource(p.Path), fmt.Sprintf("profile %s (read-only)", p.Name), nil
}

// waitForBrowser blocks until the extension connects, for one-shot
// commands. It is a no-op for the offline source.
func (s *session) waitForBrowser(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	fmt.Fprintf(os.Stderr, "Waiting for the browser extension on port %d...\n", s.cfg.Port)
	wctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	if err := s.srv.WaitConnected(wctx); err != nil {
		return fmt.Errorf("wait for extension (%s): %w", s.cfg.ConnectTimeout, err)
	}
	return nil
}

func (s *session) close() {
	s.stop()
	if err := s.db.Close(); err != nil {
		applog.Error("db.close", err)
	}
	applog.Close()
}
