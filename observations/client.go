package observations

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/corpusvault/snapshot/corpus"
)

// Client implements corpus.Observations over a pluggable storage adapter.
// Grounded on the engine's shape: a Config with defaults, thin dispatch
// over an injected dependency.
type Client struct {
	cfg     Config
	types   map[string]TypeDef
	storage *storage
	logger  *slog.Logger
}

// New creates a Client bound to adapter.
func New(cfg Config, adapter BaseAdapter) *Client {
	cfg.defaults()
	types := make(map[string]TypeDef, len(cfg.Types))
	for _, t := range cfg.Types {
		types[t.Name] = t
	}
	return &Client{cfg: cfg, types: types, storage: newStorage(adapter), logger: cfg.Logger}
}

// Put validates content against the registered type's schema, allocates an
// ID, and persists the observation.
func (c *Client) Put(ctx context.Context, typeName string, in corpus.PutObservationInput) (corpus.Observation, error) {
	c.logger.Debug("observations: put", "type", typeName, "source_store_id", in.Source.StoreID, "source_version", in.Source.Version)
	td, ok := c.types[typeName]
	if !ok {
		return corpus.Observation{}, corpus.NewError(corpus.KindValidationError, "observations.put", nil, "unregistered observation type %q", typeName)
	}

	raw, err := json.Marshal(in.Content)
	if err != nil {
		return corpus.Observation{}, corpus.NewError(corpus.KindEncodeError, "observations.put", err, "marshal content")
	}

	validated, err := td.validate(raw)
	if err != nil {
		return corpus.Observation{}, corpus.NewError(corpus.KindValidationError, "observations.put", err, "content failed schema for type %q", typeName)
	}

	row := Row{
		ID:            c.cfg.IDGenerator(),
		Type:          typeName,
		SourceStoreID: in.Source.StoreID,
		SourceVersion: in.Source.Version,
		SourcePath:    in.Source.Path,
		Content:       raw,
		Confidence:    in.Confidence,
		ObservedAt:    in.ObservedAt,
		CreatedAt:     time.Now(),
		DerivedFrom:   in.DerivedFrom,
	}

	if err := c.storage.putRow(ctx, row); err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "observations.put", err, "add_one")
		c.logger.Warn("observations: put failed", "type", typeName, "error", wrapped)
		return corpus.Observation{}, wrapped
	}

	return rowToObservation(row, validated), nil
}

// Get fetches a single observation by ID.
func (c *Client) Get(ctx context.Context, id string) (corpus.Observation, error) {
	c.logger.Debug("observations: get", "id", id)
	row, ok, err := c.storage.getRow(ctx, id)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "observations.get", err, "get_one")
		c.logger.Warn("observations: get failed", "id", id, "error", wrapped)
		return corpus.Observation{}, wrapped
	}
	if !ok {
		return corpus.Observation{}, corpus.NewError(corpus.KindObservationNotFound, "observations.get", nil, "no observation %s", id)
	}
	content, err := decodeContent(row)
	if err != nil {
		return corpus.Observation{}, err
	}
	return rowToObservation(row, content), nil
}

// Query returns decoded observations matching opts, applying the default
// staleness filter unless opts.IncludeStale is set.
func (c *Client) Query(ctx context.Context, opts corpus.ObservationQueryOptions) ([]corpus.Observation, error) {
	return c.queryInternal(ctx, opts, true)
}

// QueryMeta behaves like Query but omits Content from every result.
func (c *Client) QueryMeta(ctx context.Context, opts corpus.ObservationQueryOptions) ([]corpus.Observation, error) {
	return c.queryInternal(ctx, opts, false)
}

func (c *Client) queryInternal(ctx context.Context, opts corpus.ObservationQueryOptions, withContent bool) ([]corpus.Observation, error) {
	c.logger.Debug("observations: query", "include_stale", opts.IncludeStale)
	rows, err := c.storage.queryRows(ctx, opts)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "observations.query", err, "query_rows")
		c.logger.Warn("observations: query failed", "error", wrapped)
		return nil, wrapped
	}

	out := make([]corpus.Observation, 0, len(rows))
	cache := map[string]staleCacheEntry{}
	for _, row := range rows {
		if !opts.IncludeStale {
			stale, err := c.rowIsStale(ctx, row, opts.VersionResolver, cache)
			if err != nil {
				return nil, err
			}
			if stale {
				continue
			}
		}
		var content any
		if withContent {
			content, err = decodeContent(row)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, rowToObservation(row, content))
	}
	return out, nil
}

// Delete removes an observation by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	c.logger.Debug("observations: delete", "id", id)
	ok, err := c.storage.deleteRow(ctx, id)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "observations.delete", err, "remove_one")
		c.logger.Warn("observations: delete failed", "id", id, "error", wrapped)
		return wrapped
	}
	if !ok {
		return corpus.NewError(corpus.KindObservationNotFound, "observations.delete", nil, "no observation %s", id)
	}
	return nil
}

// DeleteBySource removes every observation whose source matches ptr
// (store_id, version, and path if given) and returns the count removed.
func (c *Client) DeleteBySource(ctx context.Context, ptr corpus.SnapshotPointer) (int, error) {
	c.logger.Debug("observations: delete_by_source", "store_id", ptr.StoreID, "version", ptr.Version)
	n, err := c.storage.deleteBySource(ctx, ptr)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "observations.delete_by_source", err, "delete_by_source")
		c.logger.Warn("observations: delete_by_source failed", "store_id", ptr.StoreID, "error", wrapped)
		return 0, wrapped
	}
	return n, nil
}

// IsStale reports whether ptr's version is not the latest for its store.
func (c *Client) IsStale(ctx context.Context, ptr corpus.SnapshotPointer) (bool, error) {
	if c.cfg.Metadata == nil {
		return false, nil
	}
	latest, err := c.cfg.Metadata.GetLatest(ctx, ptr.StoreID)
	if err != nil {
		if corpus.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return latest.Version != ptr.Version, nil
}

type staleCacheEntry struct {
	latest corpus.SnapshotMeta
	err    error
	found  bool
}

// rowIsStale implements the per-query staleness filter,
// memoizing one metadata.get_latest call per distinct source store within
// a single query.
func (c *Client) rowIsStale(ctx context.Context, row Row, resolver corpus.VersionResolver, cache map[string]staleCacheEntry) (bool, error) {
	if resolver != nil {
		res := resolver(row.SourceStoreID)
		if len(res.Versions) > 0 {
			for _, v := range res.Versions {
				if v == row.SourceVersion {
					return false, nil
				}
			}
			return true, nil
		}
	}

	if c.cfg.Metadata == nil {
		return false, nil
	}

	entry, ok := cache[row.SourceStoreID]
	if !ok {
		latest, err := c.cfg.Metadata.GetLatest(ctx, row.SourceStoreID)
		if err != nil {
			if corpus.IsNotFound(err) {
				entry = staleCacheEntry{found: false}
			} else {
				entry = staleCacheEntry{err: err}
			}
		} else {
			entry = staleCacheEntry{latest: latest, found: true}
		}
		cache[row.SourceStoreID] = entry
	}
	if entry.err != nil {
		return false, entry.err
	}
	if !entry.found {
		return false, nil
	}
	return entry.latest.Version != row.SourceVersion, nil
}

func rowToObservation(row Row, content any) corpus.Observation {
	return corpus.Observation{
		ID:   row.ID,
		Type: row.Type,
		Source: corpus.SnapshotPointer{
			StoreID: row.SourceStoreID,
			Version: row.SourceVersion,
			Path:    row.SourcePath,
		},
		Content:     content,
		Confidence:  row.Confidence,
		ObservedAt:  row.ObservedAt,
		CreatedAt:   row.CreatedAt,
		DerivedFrom: row.DerivedFrom,
	}
}

func decodeContent(row Row) (any, error) {
	if len(row.Content) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(row.Content, &v); err != nil {
		return nil, corpus.NewError(corpus.KindDecodeError, "observations.decode", err, "unmarshal content")
	}
	return v, nil
}
