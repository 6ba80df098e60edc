// Package sqlstore implements corpus.Backend over an embedded SQL database
// plus a content-addressed object store for blobs. Grounded on
// domregistry/internal/store's Open-with-schema idiom and horos47/storage/
// documents.go's transaction-per-write pattern, opened through the adapted
// dbopen package.
package sqlstore

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/observations"
	"github.com/corpusvault/snapshot/pathsafe"
)

// Backend is a corpus.Backend backed by a *sql.DB (SQLite-family) for
// metadata/observations and a plain directory for content blobs.
type Backend struct {
	db      *sql.DB
	blobDir string
	hook    corpus.EventFunc
	obs     *observations.Client
	logger  *slog.Logger
}

// New wraps an already-open *sql.DB (see dbopen.Open/OpenMemory), applying
// the corpus schema and rooting blob storage at blobDir. hook may be nil.
func New(db *sql.DB, blobDir string, hook corpus.EventFunc, obsTypes ...observations.TypeDef) (*Backend, error) {
	return NewWithLogger(db, blobDir, hook, slog.Default(), obsTypes...)
}

// NewWithLogger is New with an explicit logger, used by Open to thread
// Config.Logger through.
func NewWithLogger(db *sql.DB, blobDir string, hook corpus.EventFunc, logger *slog.Logger, obsTypes ...observations.TypeDef) (*Backend, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "sqlstore.new", err, "apply schema")
	}
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "sqlstore.new", err, "create blob dir")
	}

	b := &Backend{db: db, blobDir: blobDir, hook: hook, logger: logger}
	b.obs = observations.New(observations.Config{
		Types:    obsTypes,
		Metadata: (*metadataStore)(b),
		Logger:   logger,
	}, (*observationsAdapter)(b))
	return b, nil
}

func (b *Backend) Metadata() corpus.MetadataStore    { return (*metadataStore)(b) }
func (b *Backend) Data() corpus.DataStore            { return (*dataStore)(b) }
func (b *Backend) Observations() corpus.Observations { return b.obs }
func (b *Backend) OnEvent() corpus.EventFunc         { return b.hook }

func (b *Backend) blobPath(dataKey string) (string, error) {
	escaped := escapeDataKey(dataKey)
	return pathsafe.SafePath(b.blobDir, escaped+".bin")
}

func escapeDataKey(dataKey string) string {
	out := make([]byte, 0, len(dataKey))
	for i := 0; i < len(dataKey); i++ {
		if dataKey[i] == '/' {
			out = append(out, '_')
		} else {
			out = append(out, dataKey[i])
		}
	}
	return string(out)
}

func dirOf(path string) string { return filepath.Dir(path) }
