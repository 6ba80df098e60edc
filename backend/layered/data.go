package layered

import (
	"bytes"
	"context"
	"io"

	"github.com/corpusvault/snapshot/corpus"
)

type dataStore Backend

// Get tries each read backend in order, falling back past not_found.
func (d *dataStore) Get(ctx context.Context, dataKey string) (corpus.Handle, error) {
	b := (*Backend)(d)
	b.cfg.Logger.Debug("layered: data get", "data_key", dataKey)
	var lastErr error = corpus.NewError(corpus.KindNotFound, "layered.data.get", nil, "no read backends")
	for _, rb := range b.cfg.Read {
		h, err := rb.Data().Get(ctx, dataKey)
		if err == nil {
			return h, nil
		}
		if corpus.IsNotFound(err) {
			lastErr = err
			continue
		}
		b.cfg.Logger.Warn("layered: data get failed, short-circuiting", "data_key", dataKey, "error", err)
		return nil, err
	}
	return nil, lastErr
}

// Put fans out to every write backend. With more than one write backend
// the stream is buffered once so every backend receives the same bytes.
func (d *dataStore) Put(ctx context.Context, dataKey string, r io.Reader) error {
	b := (*Backend)(d)
	b.cfg.Logger.Debug("layered: data put", "data_key", dataKey, "write_backends", len(b.cfg.Write))
	if len(b.cfg.Write) == 0 {
		return nil
	}
	if len(b.cfg.Write) == 1 {
		return b.cfg.Write[0].Data().Put(ctx, dataKey, r)
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "layered.data.put", err, "buffer stream for fanout")
		b.cfg.Logger.Error("layered: data put buffering failed", "data_key", dataKey, "error", wrapped)
		return wrapped
	}
	for i, wb := range b.cfg.Write {
		if err := wb.Data().Put(ctx, dataKey, bytes.NewReader(buf)); err != nil {
			b.cfg.Logger.Warn("layered: data put fanout short-circuited", "data_key", dataKey, "write_index", i, "error", err)
			return err
		}
	}
	return nil
}

// Delete fans out to every write backend, ignoring per-backend not_found.
func (d *dataStore) Delete(ctx context.Context, dataKey string) error {
	b := (*Backend)(d)
	b.cfg.Logger.Debug("layered: data delete", "data_key", dataKey)
	for i, wb := range b.cfg.Write {
		err := wb.Data().Delete(ctx, dataKey)
		if err != nil && !corpus.IsNotFound(err) {
			b.cfg.Logger.Warn("layered: data delete fanout short-circuited", "data_key", dataKey, "write_index", i, "error", err)
			return err
		}
	}
	return nil
}

// Exists short-circuits true on the first read backend reporting true.
func (d *dataStore) Exists(ctx context.Context, dataKey string) (bool, error) {
	b := (*Backend)(d)
	for _, rb := range b.cfg.Read {
		ok, err := rb.Data().Exists(ctx, dataKey)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
