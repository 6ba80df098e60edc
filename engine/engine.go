// Package engine implements the snapshot engine: put, get,
// get_latest, get_meta, list, and delete over a pair of MetadataStore/
// DataStore backends and a Codec.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/corpusvault/snapshot/codec"
	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/hashver"
)

// Engine versions values of type T against a single logical store.
// Grounded on the teacher's docpipe.Pipeline shape: a Config with defaults,
// a constructor, and a thin dispatch layer over injected dependencies.
type Engine[T any] struct {
	cfg     Config
	backend corpus.Backend
	codec   codec.Codec[T]
	logger  *slog.Logger
}

// New creates an Engine bound to backend and codec.
func New[T any](cfg Config, backend corpus.Backend, c codec.Codec[T]) *Engine[T] {
	cfg.defaults()
	return &Engine[T]{cfg: cfg, backend: backend, codec: c, logger: cfg.Logger}
}

// Put encodes data, deduplicates by content hash, and versions a new
// SnapshotMeta.
func (e *Engine[T]) Put(ctx context.Context, data T, opts corpus.PutOptions) (corpus.SnapshotMeta, error) {
	storeID := e.cfg.StoreID
	version := hashver.NextVersion()
	e.logger.Debug("engine: put", "store_id", storeID, "version", version)

	bytes, err := e.codec.Encode(data)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindEncodeError, "engine.put", err, "encode failed")
		e.logger.Error("engine: put encode failed", "store_id", storeID, "version", version, "error", wrapped)
		corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventError, StoreID: storeID, Version: version, Err: wrapped, At: time.Now()})
		return corpus.SnapshotMeta{}, wrapped
	}

	contentHash := hashver.Hash(bytes)

	existing, err := e.backend.Metadata().FindByHash(ctx, storeID, contentHash)
	if err != nil {
		e.logger.Warn("engine: put find_by_hash failed", "store_id", storeID, "error", err)
		return corpus.SnapshotMeta{}, err
	}

	deduplicated := existing != nil
	var dataKey string
	if deduplicated {
		dataKey = existing.DataKey
	} else {
		dataKey = e.cfg.DataKey(storeID, version, contentHash, opts.Tags)
	}

	if !deduplicated {
		if err := e.backend.Data().Put(ctx, dataKey, byteReader(bytes)); err != nil {
			e.logger.Warn("engine: data put failed", "store_id", storeID, "version", version, "data_key", dataKey, "error", err)
			corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventError, StoreID: storeID, Version: version, DataKey: dataKey, Err: err, At: time.Now()})
			return corpus.SnapshotMeta{}, err
		}
		corpus.Emit(e.backend.OnEvent(), corpus.Event{
			Kind: corpus.EventDataPut, StoreID: storeID, Version: version,
			DataKey: dataKey, ContentHash: contentHash, Deduplicated: false, At: time.Now(),
		})
	}

	meta := corpus.SnapshotMeta{
		StoreID:     storeID,
		Version:     version,
		ContentHash: contentHash,
		ContentType: e.codec.ContentType(),
		SizeBytes:   int64(len(bytes)),
		DataKey:     dataKey,
		CreatedAt:   time.Now(),
		InvokedAt:   opts.InvokedAt,
		Parents:     opts.Parents,
		Tags:        opts.Tags,
	}

	if err := e.backend.Metadata().Put(ctx, meta); err != nil {
		e.logger.Warn("engine: metadata put failed", "store_id", storeID, "version", version, "error", err)
		corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventError, StoreID: storeID, Version: version, Err: err, At: time.Now()})
		return corpus.SnapshotMeta{}, err
	}
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventMetaPut, StoreID: storeID, Version: version, At: time.Now()})

	corpus.Emit(e.backend.OnEvent(), corpus.Event{
		Kind: corpus.EventSnapshotPut, StoreID: storeID, Version: version,
		ContentHash: contentHash, Deduplicated: deduplicated, At: time.Now(),
	})
	return meta, nil
}

// Get fetches and decodes the snapshot at version.
func (e *Engine[T]) Get(ctx context.Context, version string) (corpus.Snapshot[T], error) {
	storeID := e.cfg.StoreID
	e.logger.Debug("engine: get", "store_id", storeID, "version", version)
	meta, err := e.backend.Metadata().Get(ctx, storeID, version)
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventMetaGet, StoreID: storeID, Version: version, Found: err == nil, Err: err, At: time.Now()})
	if err != nil {
		if !corpus.IsNotFound(err) {
			e.logger.Warn("engine: metadata get failed", "store_id", storeID, "version", version, "error", err)
		}
		corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventSnapshotGet, StoreID: storeID, Version: version, Found: false, At: time.Now()})
		return corpus.Snapshot[T]{}, err
	}
	return e.hydrate(ctx, meta)
}

// GetLatest fetches and decodes the most recently created snapshot.
func (e *Engine[T]) GetLatest(ctx context.Context) (corpus.Snapshot[T], error) {
	e.logger.Debug("engine: get_latest", "store_id", e.cfg.StoreID)
	meta, err := e.backend.Metadata().GetLatest(ctx, e.cfg.StoreID)
	if err != nil {
		if !corpus.IsNotFound(err) {
			e.logger.Warn("engine: get_latest failed", "store_id", e.cfg.StoreID, "error", err)
		}
		return corpus.Snapshot[T]{}, err
	}
	return e.hydrate(ctx, meta)
}

// GetMeta fetches metadata without touching the data store.
func (e *Engine[T]) GetMeta(ctx context.Context, version string) (corpus.SnapshotMeta, error) {
	e.logger.Debug("engine: get_meta", "store_id", e.cfg.StoreID, "version", version)
	meta, err := e.backend.Metadata().Get(ctx, e.cfg.StoreID, version)
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventMetaGet, StoreID: e.cfg.StoreID, Version: version, Found: err == nil, Err: err, At: time.Now()})
	if err != nil && !corpus.IsNotFound(err) {
		e.logger.Warn("engine: get_meta failed", "store_id", e.cfg.StoreID, "version", version, "error", err)
	}
	return meta, err
}

// List delegates to the metadata store's filter+sort+limit pipeline.
func (e *Engine[T]) List(ctx context.Context, opts corpus.ListOptions) ([]corpus.SnapshotMeta, error) {
	e.logger.Debug("engine: list", "store_id", e.cfg.StoreID)
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventMetaList, StoreID: e.cfg.StoreID, At: time.Now()})
	rows, err := e.backend.Metadata().List(ctx, e.cfg.StoreID, opts)
	if err != nil {
		e.logger.Warn("engine: list failed", "store_id", e.cfg.StoreID, "error", err)
	}
	return rows, err
}

// GetChildren returns every SnapshotMeta whose parents reference
// (e.cfg.StoreID, parentVersion).
func (e *Engine[T]) GetChildren(ctx context.Context, parentVersion string) ([]corpus.SnapshotMeta, error) {
	return e.backend.Metadata().GetChildren(ctx, e.cfg.StoreID, parentVersion)
}

// Delete removes metadata only; the data blob is retained since it may be
// shared with other versions.
func (e *Engine[T]) Delete(ctx context.Context, version string) error {
	e.logger.Debug("engine: delete", "store_id", e.cfg.StoreID, "version", version)
	err := e.backend.Metadata().Delete(ctx, e.cfg.StoreID, version)
	if err != nil && !corpus.IsNotFound(err) {
		e.logger.Warn("engine: delete failed", "store_id", e.cfg.StoreID, "version", version, "error", err)
	}
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventMetaDelete, StoreID: e.cfg.StoreID, Version: version, Err: err, At: time.Now()})
	return err
}

func (e *Engine[T]) hydrate(ctx context.Context, meta corpus.SnapshotMeta) (corpus.Snapshot[T], error) {
	handle, err := e.backend.Data().Get(ctx, meta.DataKey)
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventDataGet, StoreID: meta.StoreID, Version: meta.Version, DataKey: meta.DataKey, Found: err == nil, Err: err, At: time.Now()})
	if err != nil {
		e.logger.Warn("engine: data get failed", "store_id", meta.StoreID, "version", meta.Version, "data_key", meta.DataKey, "error", err)
		return corpus.Snapshot[T]{}, err
	}
	raw, err := handle.Bytes(ctx)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "engine.get", err, "read data blob")
		e.logger.Error("engine: read data blob failed", "store_id", meta.StoreID, "version", meta.Version, "error", wrapped)
		return corpus.Snapshot[T]{}, wrapped
	}
	data, err := e.codec.Decode(raw)
	if err != nil {
		e.logger.Error("engine: decode failed", "store_id", meta.StoreID, "version", meta.Version, "error", err)
		return corpus.Snapshot[T]{}, err
	}
	corpus.Emit(e.backend.OnEvent(), corpus.Event{Kind: corpus.EventSnapshotGet, StoreID: meta.StoreID, Version: meta.Version, Found: true, At: time.Now()})
	return corpus.Snapshot[T]{Meta: meta, Data: data}, nil
}
