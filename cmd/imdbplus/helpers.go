package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/database"
	"github.com/imdbplus/imdbplus/internal/logger"
)

const lockFileName = "imdbplus.lock"

// acquireLock takes the instance lock in dir. Only one process may write the
// library database and the scraper files at a time.
func acquireLock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %q: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another imdbplus instance is already running")
	}
	return lock, nil
}

// commandLogger logs warnings and errors to the console only, so command
// output stays readable.
func commandLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:  "warn",
		Format: cfg.Logging.Format,
	})
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
