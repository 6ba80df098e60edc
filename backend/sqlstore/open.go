package sqlstore

import (
	"log/slog"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/dbopen"
	"github.com/corpusvault/snapshot/observations"
)

// Config configures Open. Grounded on the same Config-with-defaults shape
// used by engine.Config and observations.Config.
type Config struct {
	// Path is the SQLite database file path, or ":memory:" for an
	// in-process database.
	Path string

	// BlobDir roots content blob storage. Defaults to Path + "_blobs".
	BlobDir string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.BlobDir == "" {
		c.BlobDir = c.Path + "_blobs"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Open opens the database at cfg.Path with dbopen's production pragmas and
// wraps it as a Backend. Callers must blank-import modernc.org/sqlite.
func Open(cfg Config, hook corpus.EventFunc, obsTypes ...observations.TypeDef) (*Backend, error) {
	cfg.defaults()
	db, err := dbopen.Open(cfg.Path, dbopen.WithMkdirAll())
	if err != nil {
		cfg.Logger.Error("sqlstore: open database failed", "path", cfg.Path, "error", err)
		return nil, corpus.NewError(corpus.KindStorageError, "sqlstore.open", err, "open database")
	}
	cfg.Logger.Debug("sqlstore: opened database", "path", cfg.Path, "blob_dir", cfg.BlobDir)
	b, err := NewWithLogger(db, cfg.BlobDir, hook, cfg.Logger, obsTypes...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}
