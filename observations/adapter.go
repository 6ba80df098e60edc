// Package observations implements the typed-fact layer over a snapshot
// store: a Client wrapping a pluggable storage adapter, and staleness
// resolution against a MetadataStore. Pointer resolution lives in corpus.
package observations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/corpusvault/snapshot/corpus"
)

// Row is the on-disk/in-memory representation of one observation, decoupled
// from the decoded Content type so heterogeneous observation types can
// share one storage adapter.
type Row struct {
	ID            string
	Type          string
	SourceStoreID string
	SourceVersion string
	SourcePath    string
	Content       json.RawMessage
	Confidence    *float64
	ObservedAt    *time.Time
	CreatedAt     time.Time
	DerivedFrom   []corpus.SnapshotPointer
}

// BaseAdapter is the storage surface every backend must implement.
type BaseAdapter interface {
	GetAll(ctx context.Context) ([]Row, error)
	SetAll(ctx context.Context, rows []Row) error
	GetOne(ctx context.Context, id string) (Row, bool, error)
	AddOne(ctx context.Context, row Row) error
	RemoveOne(ctx context.Context, id string) (bool, error)
}

// OptimizedAdapter is an optional storage surface a backend may implement
// to push filtering down instead of loading every row.
type OptimizedAdapter interface {
	Query(ctx context.Context, opts corpus.ObservationQueryOptions) ([]Row, error)
	DeleteBySource(ctx context.Context, ptr corpus.SnapshotPointer) (int, error)
}
