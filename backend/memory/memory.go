// Package memory implements corpus.Backend entirely in process memory,
// intended for tests and examples. Grounded on
// goliatone-go-options/pkg/state.MemoryStore's mutex-guarded map shape.
package memory

import (
	"context"
	"io"
	"sync"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/observations"
)

type metaKey struct {
	storeID string
	version string
}

// Backend is an in-memory corpus.Backend. The zero value is not usable;
// construct with New.
type Backend struct {
	mu      sync.RWMutex
	meta    map[metaKey]corpus.SnapshotMeta
	data    map[string][]byte
	obsRows map[string]observations.Row
	obs     *observations.Client
	hook    corpus.EventFunc
}

// New creates an empty in-memory Backend. hook may be nil. obsTypes
// registers the observation types this backend's Observations() client
// accepts puts for.
func New(hook corpus.EventFunc, obsTypes ...observations.TypeDef) *Backend {
	b := &Backend{
		meta:    make(map[metaKey]corpus.SnapshotMeta),
		data:    make(map[string][]byte),
		obsRows: make(map[string]observations.Row),
		hook:    hook,
	}
	b.obs = observations.New(observations.Config{
		Types:    obsTypes,
		Metadata: (*metadataStore)(b),
	}, (*observationsAdapter)(b))
	return b
}

func (b *Backend) Metadata() corpus.MetadataStore       { return (*metadataStore)(b) }
func (b *Backend) Data() corpus.DataStore               { return (*dataStore)(b) }
func (b *Backend) Observations() corpus.Observations    { return b.obs }
func (b *Backend) OnEvent() corpus.EventFunc            { return b.hook }

type metadataStore Backend

func (m *metadataStore) Get(_ context.Context, storeID, version string) (corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.RLock()
	defer b.mu.RUnlock()
	meta, ok := b.meta[metaKey{storeID, version}]
	if !ok {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "memory.metadata.get", nil, "no snapshot %s/%s", storeID, version)
	}
	return meta, nil
}

func (m *metadataStore) Put(_ context.Context, meta corpus.SnapshotMeta) error {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meta[metaKey{meta.StoreID, meta.Version}] = meta
	return nil
}

func (m *metadataStore) Delete(_ context.Context, storeID, version string) error {
	b := (*Backend)(m)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.meta, metaKey{storeID, version})
	return nil
}

func (m *metadataStore) List(_ context.Context, storeID string, opts corpus.ListOptions) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.RLock()
	defer b.mu.RUnlock()

	var rows []corpus.SnapshotMeta
	for k, meta := range b.meta {
		if k.storeID == storeID {
			rows = append(rows, meta)
		}
	}
	return applyListOptions(rows, opts), nil
}

func (m *metadataStore) GetLatest(ctx context.Context, storeID string) (corpus.SnapshotMeta, error) {
	rows, err := m.List(ctx, storeID, corpus.ListOptions{Limit: 1, HasLimit: true})
	if err != nil {
		return corpus.SnapshotMeta{}, err
	}
	if len(rows) == 0 {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "memory.metadata.get_latest", nil, "no snapshots for store %s", storeID)
	}
	return rows[0], nil
}

func (m *metadataStore) GetChildren(_ context.Context, parentStoreID, parentVersion string) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.RLock()
	defer b.mu.RUnlock()

	var rows []corpus.SnapshotMeta
	for _, meta := range b.meta {
		for _, p := range meta.Parents {
			if p.StoreID == parentStoreID && p.Version == parentVersion {
				rows = append(rows, meta)
				break
			}
		}
	}
	return applyListOptions(rows, corpus.ListOptions{}), nil
}

func (m *metadataStore) FindByHash(_ context.Context, storeID, contentHash string) (*corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for k, meta := range b.meta {
		if k.storeID == storeID && meta.ContentHash == contentHash {
			found := meta
			return &found, nil
		}
	}
	return nil, nil
}

type dataStore Backend

func (d *dataStore) Get(_ context.Context, dataKey string) (corpus.Handle, error) {
	b := (*Backend)(d)
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.data[dataKey]
	if !ok {
		return nil, corpus.NewError(corpus.KindNotFound, "memory.data.get", nil, "no blob %s", dataKey)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return corpus.BytesHandle(out), nil
}

func (d *dataStore) Put(_ context.Context, dataKey string, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return corpus.NewError(corpus.KindStorageError, "memory.data.put", err, "read stream")
	}
	b := (*Backend)(d)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[dataKey] = raw
	return nil
}

func (d *dataStore) Delete(_ context.Context, dataKey string) error {
	b := (*Backend)(d)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, dataKey)
	return nil
}

func (d *dataStore) Exists(_ context.Context, dataKey string) (bool, error) {
	b := (*Backend)(d)
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[dataKey]
	return ok, nil
}
