package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/dbopen"
	"github.com/corpusvault/snapshot/observations"
)

// observationsAdapter implements both observations.BaseAdapter and
// observations.OptimizedAdapter over corpus_observations, pushing type/
// source/time filters into SQL instead of loading every row.
// source_span_start/end are schema columns but always NULL here:
// observations.Row carries no span on its source pointer, only a path, so
// there is nothing to persist into them yet.
type observationsAdapter Backend

func (a *observationsAdapter) GetAll(ctx context.Context) ([]observations.Row, error) {
	rows, err := (*Backend)(a).db.QueryContext(ctx, selectObsColumns+` FROM corpus_observations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObsRows(rows)
}

func (a *observationsAdapter) SetAll(ctx context.Context, rows []observations.Row) error {
	return dbopen.RunTx(ctx, (*Backend)(a).db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_observations`); err != nil {
			return err
		}
		for _, r := range rows {
			if err := insertObsRow(ctx, tx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *observationsAdapter) GetOne(ctx context.Context, id string) (observations.Row, bool, error) {
	row := (*Backend)(a).db.QueryRowContext(ctx, selectObsColumns+` FROM corpus_observations WHERE id = ?`, id)
	r, err := scanObsRow(row)
	if err == sql.ErrNoRows {
		return observations.Row{}, false, nil
	}
	if err != nil {
		return observations.Row{}, false, err
	}
	return r, true, nil
}

func (a *observationsAdapter) AddOne(ctx context.Context, row observations.Row) error {
	return dbopen.RunTx(ctx, (*Backend)(a).db, func(tx *sql.Tx) error {
		return insertObsRow(ctx, tx, row)
	})
}

func (a *observationsAdapter) RemoveOne(ctx context.Context, id string) (bool, error) {
	res, err := dbopen.Exec(ctx, (*Backend)(a).db, `DELETE FROM corpus_observations WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *observationsAdapter) Query(ctx context.Context, opts corpus.ObservationQueryOptions) ([]observations.Row, error) {
	query, args := buildObsQuery(opts)
	rows, err := (*Backend)(a).db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObsRows(rows)
}

func (a *observationsAdapter) DeleteBySource(ctx context.Context, ptr corpus.SnapshotPointer) (int, error) {
	query := `DELETE FROM corpus_observations WHERE source_store_id = ? AND source_version = ?`
	args := []any{ptr.StoreID, ptr.Version}
	if ptr.Path != "" {
		query += ` AND source_path = ?`
		args = append(args, ptr.Path)
	}
	res, err := dbopen.Exec(ctx, (*Backend)(a).db, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

const selectObsColumns = `SELECT id, type, source_store_id, source_version, source_path,
	content, confidence, observed_at, created_at, derived_from`

func insertObsRow(ctx context.Context, tx *sql.Tx, r observations.Row) error {
	derived, err := json.Marshal(r.DerivedFrom)
	if err != nil {
		return corpus.NewError(corpus.KindEncodeError, "sqlstore.observations.put", err, "encode derived_from")
	}
	var observedAt any
	if r.ObservedAt != nil {
		observedAt = r.ObservedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO corpus_observations
			(id, type, source_store_id, source_version, source_path, content, confidence, observed_at, created_at, derived_from)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Type, r.SourceStoreID, r.SourceVersion, nullableString(r.SourcePath),
		string(r.Content), r.Confidence, observedAt, r.CreatedAt.UTC().Format(time.RFC3339Nano), string(derived))
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type obsScannable interface {
	Scan(dest ...any) error
}

func scanObsRow(row obsScannable) (observations.Row, error) {
	var (
		r              observations.Row
		sourcePath     sql.NullString
		content        string
		observedAtRaw  sql.NullString
		createdAtRaw   string
		derivedFromRaw string
	)
	if err := row.Scan(&r.ID, &r.Type, &r.SourceStoreID, &r.SourceVersion, &sourcePath,
		&content, &r.Confidence, &observedAtRaw, &createdAtRaw, &derivedFromRaw); err != nil {
		return observations.Row{}, err
	}
	r.SourcePath = sourcePath.String
	r.Content = json.RawMessage(content)

	createdAt, err := time.Parse(time.RFC3339Nano, createdAtRaw)
	if err != nil {
		return observations.Row{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.observations.scan", err, "decode created_at")
	}
	r.CreatedAt = createdAt

	if observedAtRaw.Valid {
		t, err := time.Parse(time.RFC3339Nano, observedAtRaw.String)
		if err != nil {
			return observations.Row{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.observations.scan", err, "decode observed_at")
		}
		r.ObservedAt = &t
	}
	if derivedFromRaw != "" && derivedFromRaw != "null" {
		if err := json.Unmarshal([]byte(derivedFromRaw), &r.DerivedFrom); err != nil {
			return observations.Row{}, corpus.NewError(corpus.KindDecodeError, "sqlstore.observations.scan", err, "decode derived_from")
		}
	}
	return r, nil
}

func scanObsRows(rows *sql.Rows) ([]observations.Row, error) {
	var out []observations.Row
	for rows.Next() {
		r, err := scanObsRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildObsQuery(opts corpus.ObservationQueryOptions) (string, []any) {
	query := selectObsColumns + ` FROM corpus_observations WHERE 1=1`
	var args []any

	if opts.HasType && len(opts.Type) > 0 {
		placeholders := ""
		for i, t := range opts.Type {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, t)
		}
		query += ` AND type IN (` + placeholders + `)`
	}
	if opts.HasSourceStore {
		query += ` AND source_store_id = ?`
		args = append(args, opts.SourceStore)
	}
	if opts.HasSourceVersion {
		query += ` AND source_version = ?`
		args = append(args, opts.SourceVersion)
	}
	if opts.HasSourcePrefix {
		query += ` AND source_version LIKE ?`
		args = append(args, opts.SourcePrefix+"%")
	}
	if opts.CreatedAfter != nil {
		query += ` AND created_at > ?`
		args = append(args, opts.CreatedAfter.UTC().Format(time.RFC3339Nano))
	}
	if opts.CreatedBefore != nil {
		query += ` AND created_at < ?`
		args = append(args, opts.CreatedBefore.UTC().Format(time.RFC3339Nano))
	}
	if opts.ObservedAfter != nil {
		query += ` AND observed_at IS NOT NULL AND observed_at > ?`
		args = append(args, opts.ObservedAfter.UTC().Format(time.RFC3339Nano))
	}
	if opts.ObservedBefore != nil {
		query += ` AND observed_at IS NOT NULL AND observed_at < ?`
		args = append(args, opts.ObservedBefore.UTC().Format(time.RFC3339Nano))
	}

	query += ` ORDER BY created_at DESC, id ASC`
	if opts.HasLimit {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	return query, args
}
