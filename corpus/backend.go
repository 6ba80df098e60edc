package corpus

import (
	"bytes"
	"context"
	"io"
)

// Handle lets a DataStore.Get caller choose between a full buffer and a
// stream without forcing a redundant read.
type Handle interface {
	Bytes(ctx context.Context) ([]byte, error)
	Reader(ctx context.Context) (io.ReadCloser, error)
}

// BytesHandle is a Handle backed by an already-materialized buffer.
type BytesHandle []byte

func (h BytesHandle) Bytes(context.Context) ([]byte, error) { return []byte(h), nil }

func (h BytesHandle) Reader(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(h)), nil
}

// MetadataStore persists SnapshotMeta keyed by (store_id, version).
type MetadataStore interface {
	Get(ctx context.Context, storeID, version string) (SnapshotMeta, error)
	Put(ctx context.Context, meta SnapshotMeta) error
	Delete(ctx context.Context, storeID, version string) error
	List(ctx context.Context, storeID string, opts ListOptions) ([]SnapshotMeta, error)
	GetLatest(ctx context.Context, storeID string) (SnapshotMeta, error)
	GetChildren(ctx context.Context, parentStoreID, parentVersion string) ([]SnapshotMeta, error)
	FindByHash(ctx context.Context, storeID, contentHash string) (*SnapshotMeta, error)
}

// DataStore persists raw bytes keyed by an opaque data_key. Put
// accepts a stream and consumes it exactly once.
type DataStore interface {
	Get(ctx context.Context, dataKey string) (Handle, error)
	Put(ctx context.Context, dataKey string, r io.Reader) error
	Delete(ctx context.Context, dataKey string) error
	Exists(ctx context.Context, dataKey string) (bool, error)
}

// Observations is the surface a Backend exposes for the observations
// subsystem, kept here (rather than importing the observations
// package) to avoid a cycle: observations.Client implements this interface
// structurally.
type Observations interface {
	Put(ctx context.Context, typeName string, in PutObservationInput) (Observation, error)
	Get(ctx context.Context, id string) (Observation, error)
	Query(ctx context.Context, opts ObservationQueryOptions) ([]Observation, error)
	QueryMeta(ctx context.Context, opts ObservationQueryOptions) ([]Observation, error)
	Delete(ctx context.Context, id string) error
	DeleteBySource(ctx context.Context, ptr SnapshotPointer) (int, error)
	IsStale(ctx context.Context, ptr SnapshotPointer) (bool, error)
}

// Backend bundles the storage surfaces the snapshot engine and composites
// consume. Observations and OnEvent are optional.
type Backend interface {
	Metadata() MetadataStore
	Data() DataStore
	Observations() Observations // nil if this backend has no observations support
	OnEvent() EventFunc         // nil if events are not observed
}
