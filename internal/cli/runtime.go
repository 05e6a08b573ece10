package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"focussync/internal/config"
	"focussync/internal/db"
	apperrors "focussync/internal/errors"
	"focussync/internal/model"
	"focussync/internal/repository"
	"focussync/internal/service"
	"focussync/internal/snapshot"
	"focussync/internal/timer"
	"focussync/internal/timetracking"
)

var errNotLoggedIn = errors.New("not logged in: run `focus login` or pass --offline")

type historyLister interface {
	History(ctx context.Context, limit int) ([]model.TimeTrackingLog, error)
}

// session is everything one command invocation needs. close must run on every
// exit path.
type session struct {
	cfg         *config.ClientConfig
	coordinator *timer.Coordinator
	history     historyLister
	expired     bool

	localDB *sql.DB
}

func loadConfig(opts *globalOptions) (*config.ClientConfig, error) {
	path := opts.configPath
	if path == "" {
		defaultPath, err := config.DefaultClientPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := config.LoadClient(path)
	if err != nil {
		return nil, err
	}
	if opts.offline {
		cfg.Offline = true
	}
	return cfg, nil
}

// openSession restores the Pomodoro snapshot, connects the time-tracking
// client and loads the open log.
func openSession(cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	logger := log.New(cmd.ErrOrStderr(), "", 0)

	client, err := s.openClient(cmd.Context())
	if err != nil {
		s.close()
		return nil, err
	}

	backend, err := s.snapshotBackend()
	if err != nil {
		s.close()
		return nil, err
	}
	store := snapshot.NewStore(backend, cfg.ProfileKey(), logger)

	state, expired := store.Restore(timeNow(), cfg.Pomodoro.Settings())
	s.expired = expired
	s.coordinator = timer.New(state, store, client, timer.Options{
		Clock:  timeNow,
		Logger: logger,
	})

	if _, err := s.coordinator.Refresh(cmd.Context()); err != nil {
		if apperrors.IsUnauthorized(err) {
			s.close()
			return nil, fmt.Errorf("session expired, run `focus login` again: %w", err)
		}
		logger.Printf("warning: could not load the time tracking session: %v", err)
	}

	if expired {
		warnExpired(cmd.ErrOrStderr(), state.Mode)
	}
	return s, nil
}

func (s *session) openClient(ctx context.Context) (timetracking.Client, error) {
	if !s.cfg.Offline {
		if s.cfg.Token == "" {
			return nil, errNotLoggedIn
		}
		client := timetracking.NewHTTPClient(s.cfg.ServerURL, s.cfg.Token, nil)
		s.history = client
		return client, nil
	}

	database, err := s.openLocalDB()
	if err != nil {
		return nil, err
	}
	if err := repository.NewUserRepository(database).EnsureLocal(ctx, s.cfg.LocalUserID); err != nil {
		return nil, err
	}
	timeTrackingService := service.NewTimeTrackingService(repository.NewTimeLogRepository(database))
	client := timetracking.NewLocalClient(timeTrackingService, s.cfg.LocalUserID)
	s.history = client
	return client, nil
}

func (s *session) snapshotBackend() (snapshot.Backend, error) {
	if s.cfg.SnapshotBackend == config.SnapshotBackendSQLite {
		database, err := s.openLocalDB()
		if err != nil {
			return nil, err
		}
		return snapshot.NewSQLiteBackend(repository.NewSnapshotRepository(database)), nil
	}
	return snapshot.NewFileBackend(s.cfg.SnapshotPath), nil
}

func (s *session) openLocalDB() (*sql.DB, error) {
	if s.localDB != nil {
		return s.localDB, nil
	}
	database, err := db.OpenSQLite(s.cfg.LocalDBPath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database, db.Migrations("")); err != nil {
		_ = database.Close()
		return nil, err
	}
	s.localDB = database
	return database, nil
}

func (s *session) close() {
	if s.coordinator != nil {
		s.coordinator.Close()
	}
	if s.localDB != nil {
		_ = s.localDB.Close()
	}
}

// withSession opens a session for the duration of run.
func withSession(opts *globalOptions, run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		defer s.close()
		return run(cmd, args, s)
	}
}

func warnExpired(w io.Writer, mode model.Mode) {
	fmt.Fprintf(w, "%s ended while focus was not running. Run `focus pomodoro complete` to move on.\n",
		model.ModeLabel(mode))
}
