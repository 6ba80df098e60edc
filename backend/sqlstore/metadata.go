package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/dbopen"
)

type metadataStore Backend

func (m *metadataStore) Get(ctx context.Context, storeID, version string) (corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.logger.Debug("sqlstore: metadata get", "store_id", storeID, "version", version)
	row := b.db.QueryRowContext(ctx, `
		SELECT store_id, version, parents, created_at, invoked_at, content_hash,
		       content_type, size_bytes, data_key, tags
		FROM corpus_snapshots WHERE store_id = ? AND version = ?`, storeID, version)
	meta, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "sqlstore.metadata.get", nil, "no snapshot %s/%s", storeID, version)
	}
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.get", err, "query")
		b.logger.Error("sqlstore: metadata get failed", "store_id", storeID, "version", version, "error", wrapped)
		return corpus.SnapshotMeta{}, wrapped
	}
	return meta, nil
}

func (m *metadataStore) Put(ctx context.Context, meta corpus.SnapshotMeta) error {
	b := (*Backend)(m)
	b.logger.Debug("sqlstore: metadata put", "store_id", meta.StoreID, "version", meta.Version)
	parents, err := json.Marshal(meta.Parents)
	if err != nil {
		return corpus.NewError(corpus.KindEncodeError, "sqlstore.metadata.put", err, "encode parents")
	}
	var tags any
	if len(meta.Tags) > 0 {
		raw, err := json.Marshal(meta.Tags)
		if err != nil {
			return corpus.NewError(corpus.KindEncodeError, "sqlstore.metadata.put", err, "encode tags")
		}
		tags = string(raw)
	}
	var invokedAt any
	if meta.InvokedAt != nil {
		invokedAt = meta.InvokedAt.UTC().Format(time.RFC3339Nano)
	}

	err = dbopen.RunTx(ctx, b.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO corpus_snapshots
				(store_id, version, parents, created_at, invoked_at, content_hash, content_type, size_bytes, data_key, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (store_id, version) DO UPDATE SET
				parents = excluded.parents, created_at = excluded.created_at,
				invoked_at = excluded.invoked_at, content_hash = excluded.content_hash,
				content_type = excluded.content_type, size_bytes = excluded.size_bytes,
				data_key = excluded.data_key, tags = excluded.tags`,
			meta.StoreID, meta.Version, string(parents), meta.CreatedAt.UTC().Format(time.RFC3339Nano),
			invokedAt, meta.ContentHash, meta.ContentType, meta.SizeBytes, meta.DataKey, tags)
		return err
	})
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.put", err, "insert")
		b.logger.Error("sqlstore: metadata put failed", "store_id", meta.StoreID, "version", meta.Version, "error", wrapped)
		return wrapped
	}
	return nil
}

func (m *metadataStore) Delete(ctx context.Context, storeID, version string) error {
	b := (*Backend)(m)
	b.logger.Debug("sqlstore: metadata delete", "store_id", storeID, "version", version)
	_, err := dbopen.Exec(ctx, b.db,
		`DELETE FROM corpus_snapshots WHERE store_id = ? AND version = ?`, storeID, version)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.delete", err, "delete")
		b.logger.Error("sqlstore: metadata delete failed", "store_id", storeID, "version", version, "error", wrapped)
		return wrapped
	}
	return nil
}

func (m *metadataStore) List(ctx context.Context, storeID string, opts corpus.ListOptions) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.logger.Debug("sqlstore: metadata list", "store_id", storeID)
	rows, err := b.db.QueryContext(ctx, `
		SELECT store_id, version, parents, created_at, invoked_at, content_hash,
		       content_type, size_bytes, data_key, tags
		FROM corpus_snapshots WHERE store_id = ?`, storeID)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.list", err, "query")
		b.logger.Error("sqlstore: metadata list failed", "store_id", storeID, "error", wrapped)
		return nil, wrapped
	}
	defer rows.Close()

	metas, err := scanMetaRows(rows)
	if err != nil {
		return nil, err
	}
	return applyListOptions(metas, opts), nil
}

func (m *metadataStore) GetLatest(ctx context.Context, storeID string) (corpus.SnapshotMeta, error) {
	rows, err := m.List(ctx, storeID, corpus.ListOptions{Limit: 1, HasLimit: true})
	if err != nil {
		return corpus.SnapshotMeta{}, err
	}
	if len(rows) == 0 {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindNotFound, "sqlstore.metadata.get_latest", nil, "no snapshots for store %s", storeID)
	}
	return rows[0], nil
}

// GetChildren scans every row rather than pushing the "parents contains
// (store_id, version)" predicate into SQL: corpus_snapshots.parents is a
// JSON text column and the JSON1 extension is not guaranteed present across
// every modernc.org/sqlite build, so the existence check is evaluated in Go
// after decoding each row's parents.
func (m *metadataStore) GetChildren(ctx context.Context, parentStoreID, parentVersion string) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	b.logger.Debug("sqlstore: metadata get_children", "parent_store_id", parentStoreID, "parent_version", parentVersion)
	rows, err := b.db.QueryContext(ctx, `
		SELECT store_id, version, parents, created_at, invoked_at, content_hash,
		       content_type, size_bytes, data_key, tags
		FROM corpus_snapshots`)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.get_children", err, "query")
		b.logger.Error("sqlstore: metadata get_children failed", "parent_store_id", parentStoreID, "error", wrapped)
		return nil, wrapped
	}
	defer rows.Close()

	all, err := scanMetaRows(rows)
	if err != nil {
		return nil, err
	}

	var out []corpus.SnapshotMeta
	for _, meta := range all {
		for _, p := range meta.Parents {
			if p.StoreID == parentStoreID && p.Version == parentVersion {
				out = append(out, meta)
				break
			}
		}
	}
	return applyListOptions(out, corpus.ListOptions{}), nil
}

func (m *metadataStore) FindByHash(ctx context.Context, storeID, contentHash string) (*corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	row := b.db.QueryRowContext(ctx, `
		SELECT store_id, version, parents, created_at, invoked_at, content_hash,
		       content_type, size_bytes, data_key, tags
		FROM corpus_snapshots WHERE store_id = ? AND content_hash = ? LIMIT 1`, storeID, contentHash)
	meta, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.find_by_hash", err, "query")
		b.logger.Error("sqlstore: metadata find_by_hash failed", "store_id", storeID, "error", wrapped)
		return nil, wrapped
	}
	return &meta, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMeta(row scannable) (corpus.SnapshotMeta, error) {
	var (
		meta                corpus.SnapshotMeta
		parentsRaw          string
		createdAtRaw        string
		invokedAtRaw, tags  sql.NullString
	)
	if err := row.Scan(&meta.StoreID, &meta.Version, &parentsRaw, &createdAtRaw, &invokedAtRaw,
		&meta.ContentHash, &meta.ContentType, &meta.SizeBytes, &meta.DataKey, &tags); err != nil {
		return corpus.SnapshotMeta{}, err
	}

	if err := json.Unmarshal([]byte(parentsRaw), &meta.Parents); err != nil {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.metadata.scan", err, "decode parents")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtRaw)
	if err != nil {
		return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.metadata.scan", err, "decode created_at")
	}
	meta.CreatedAt = createdAt

	if invokedAtRaw.Valid {
		t, err := time.Parse(time.RFC3339Nano, invokedAtRaw.String)
		if err != nil {
			return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.metadata.scan", err, "decode invoked_at")
		}
		meta.InvokedAt = &t
	}
	if tags.Valid {
		if err := json.Unmarshal([]byte(tags.String), &meta.Tags); err != nil {
			return corpus.SnapshotMeta{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.metadata.scan", err, "decode tags")
		}
	}
	return meta, nil
}

func scanMetaRows(rows *sql.Rows) ([]corpus.SnapshotMeta, error) {
	var out []corpus.SnapshotMeta
	for rows.Next() {
		meta, err := scanMeta(rows)
		if err != nil {
			return nil, corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.scan", err, "scan row")
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "sqlstore.metadata.scan", err, "iterate rows")
	}
	return out, nil
}
