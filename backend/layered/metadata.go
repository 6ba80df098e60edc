package layered

import (
	"context"
	"sort"

	"github.com/corpusvault/snapshot/corpus"
)

type metadataStore Backend

// Get tries each read backend in order. The first success wins; not_found
// continues to the next backend; any other error short-circuits.
func (m *metadataStore) Get(ctx context.Context, storeID, version string) (corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.cfg.Logger.Debug("layered: metadata get", "store_id", storeID, "version", version)
	var lastErr error = corpus.NewError(corpus.KindNotFound, "layered.metadata.get", nil, "no read backends")
	for i, rb := range b.cfg.Read {
		meta, err := rb.Metadata().Get(ctx, storeID, version)
		if err == nil {
			return meta, nil
		}
		if corpus.IsNotFound(err) {
			lastErr = err
			continue
		}
		b.cfg.Logger.Warn("layered: metadata get failed, short-circuiting", "store_id", storeID, "version", version, "read_index", i, "error", err)
		return corpus.SnapshotMeta{}, err
	}
	return corpus.SnapshotMeta{}, lastErr
}

// Put fans out to every write backend in order, stopping at the first
// failure.
func (m *metadataStore) Put(ctx context.Context, meta corpus.SnapshotMeta) error {
	b := (*Backend)(m)
	b.cfg.Logger.Debug("layered: metadata put", "store_id", meta.StoreID, "version", meta.Version, "write_backends", len(b.cfg.Write))
	for i, wb := range b.cfg.Write {
		if err := wb.Metadata().Put(ctx, meta); err != nil {
			b.cfg.Logger.Warn("layered: metadata put fanout short-circuited", "store_id", meta.StoreID, "version", meta.Version, "write_index", i, "error", err)
			return err
		}
	}
	return nil
}

// Delete fans out to every write backend, ignoring per-backend not_found
// (already-gone counts as success).
func (m *metadataStore) Delete(ctx context.Context, storeID, version string) error {
	b := (*Backend)(m)
	b.cfg.Logger.Debug("layered: metadata delete", "store_id", storeID, "version", version)
	for i, wb := range b.cfg.Write {
		err := wb.Metadata().Delete(ctx, storeID, version)
		if err != nil && !corpus.IsNotFound(err) {
			b.cfg.Logger.Warn("layered: metadata delete fanout short-circuited", "store_id", storeID, "version", version, "write_index", i, "error", err)
			return err
		}
	}
	return nil
}

func (m *metadataStore) List(ctx context.Context, storeID string, opts corpus.ListOptions) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.cfg.Logger.Debug("layered: metadata list", "store_id", storeID, "strategy", b.cfg.ListStrategy)
	if len(b.cfg.Read) == 0 {
		return nil, nil
	}
	if b.cfg.ListStrategy == ListFirst {
		return b.cfg.Read[0].Metadata().List(ctx, storeID, opts)
	}

	seen := make(map[string]struct{})
	var merged []corpus.SnapshotMeta
	for _, rb := range b.cfg.Read {
		rows, err := rb.Metadata().List(ctx, storeID, corpus.ListOptions{Tags: opts.Tags, Before: opts.Before, After: opts.After})
		if err != nil {
			b.cfg.Logger.Warn("layered: metadata list merge failed", "store_id", storeID, "error", err)
			return nil, err
		}
		for _, row := range rows {
			if _, dup := seen[row.Version]; dup {
				continue
			}
			seen[row.Version] = struct{}{}
			merged = append(merged, row)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].Version > merged[j].Version
	})
	if opts.HasLimit {
		limit := opts.Limit
		if limit < 0 {
			limit = 0
		}
		if limit < len(merged) {
			merged = merged[:limit]
		}
	}
	return merged, nil
}

// GetLatest fetches the latest snapshot from every read backend and picks
// the global max by created_at.
func (m *metadataStore) GetLatest(ctx context.Context, storeID string) (corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.cfg.Logger.Debug("layered: metadata get_latest", "store_id", storeID)
	var (
		best  corpus.SnapshotMeta
		found bool
	)
	for _, rb := range b.cfg.Read {
		meta, err := rb.Metadata().GetLatest(ctx, storeID)
		if err != nil {
			if corpus.IsNotFound(err) {
				continue
			}
			b.cfg.Logger.Warn("layered: metadata get_latest failed", "store_id", storeID, "error", err)
			return corpus.SnapshotMeta{}, err
		}
		if !found || meta.CreatedAt.After(best.CreatedAt) {
			best = meta
			found = true
		}
	}
	if !found {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "layered.metadata.get_latest", nil, "no snapshots for store %s", storeID)
	}
	return best, nil
}

// GetChildren gathers children from every read backend, deduped by
// (store_id, version).
func (m *metadataStore) GetChildren(ctx context.Context, parentStoreID, parentVersion string) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	type key struct{ storeID, version string }
	seen := make(map[key]struct{})
	var out []corpus.SnapshotMeta
	for _, rb := range b.cfg.Read {
		rows, err := rb.Metadata().GetChildren(ctx, parentStoreID, parentVersion)
		if err != nil {
			b.cfg.Logger.Warn("layered: metadata get_children failed", "parent_store_id", parentStoreID, "error", err)
			return nil, err
		}
		for _, row := range rows {
			k := key{row.StoreID, row.Version}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, row)
		}
	}
	return out, nil
}

// FindByHash returns the first match across the read chain, in order.
func (m *metadataStore) FindByHash(ctx context.Context, storeID, contentHash string) (*corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	for _, rb := range b.cfg.Read {
		found, err := rb.Metadata().FindByHash(ctx, storeID, contentHash)
		if err != nil {
			b.cfg.Logger.Warn("layered: metadata find_by_hash failed", "store_id", storeID, "error", err)
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}
