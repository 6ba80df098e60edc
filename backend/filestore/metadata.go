package filestore

import (
	"context"
	"encoding/json"
	"os"

	"github.com/corpusvault/snapshot/corpus"
)

type metadataStore Backend

func (m *metadataStore) readAll(storeID string) ([]metaEntry, error) {
	path, err := (*Backend)(m).metaPath(storeID)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "filestore.metadata.read", err, "read %s", path)
	}
	var entries []metaEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, corpus.NewError(corpus.KindDecodeError, "filestore.metadata.read", err, "decode %s", path)
	}
	return entries, nil
}

func (m *metadataStore) writeAll(storeID string, entries []metaEntry) error {
	path, err := (*Backend)(m).metaPath(storeID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return corpus.NewError(corpus.KindStorageError, "filestore.metadata.write", err, "mkdir")
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return corpus.NewError(corpus.KindEncodeError, "filestore.metadata.write", err, "encode")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return corpus.NewError(corpus.KindStorageError, "filestore.metadata.write", err, "write %s", path)
	}
	return nil
}

func (m *metadataStore) Get(_ context.Context, storeID, version string) (corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := m.readAll(storeID)
	if err != nil {
		return corpus.SnapshotMeta{}, err
	}
	for _, e := range entries {
		if e.Version == version {
			return e.Meta, nil
		}
	}
	return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "filestore.metadata.get", nil, "no snapshot %s/%s", storeID, version)
}

func (m *metadataStore) Put(_ context.Context, meta corpus.SnapshotMeta) error {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := m.readAll(meta.StoreID)
	if err != nil {
		return err
	}
	replaced := false
	for i, e := range entries {
		if e.Version == meta.Version {
			entries[i].Meta = meta
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, metaEntry{Version: meta.Version, Meta: meta})
	}
	return m.writeAll(meta.StoreID, entries)
}

func (m *metadataStore) Delete(_ context.Context, storeID, version string) error {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := m.readAll(storeID)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Version != version {
			kept = append(kept, e)
		}
	}
	return m.writeAll(storeID, kept)
}

func (m *metadataStore) List(_ context.Context, storeID string, opts corpus.ListOptions) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := m.readAll(storeID)
	if err != nil {
		return nil, err
	}
	rows := make([]corpus.SnapshotMeta, len(entries))
	for i, e := range entries {
		rows[i] = e.Meta
	}
	return applyListOptions(rows, opts), nil
}

func (m *metadataStore) GetLatest(ctx context.Context, storeID string) (corpus.SnapshotMeta, error) {
	rows, err := m.List(ctx, storeID, corpus.ListOptions{Limit: 1, HasLimit: true})
	if err != nil {
		return corpus.SnapshotMeta{}, err
	}
	if len(rows) == 0 {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "filestore.metadata.get_latest", nil, "no snapshots for store %s", storeID)
	}
	return rows[0], nil
}

func (m *metadataStore) GetChildren(_ context.Context, parentStoreID, parentVersion string) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()

	return m.scanChildren(parentStoreID, parentVersion)
}

func (m *metadataStore) FindByHash(_ context.Context, storeID, contentHash string) (*corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := m.readAll(storeID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Meta.ContentHash == contentHash {
			found := e.Meta
			return &found, nil
		}
	}
	return nil, nil
}
