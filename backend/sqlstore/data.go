package sqlstore

import (
	"context"
	"io"
	"os"

	"github.com/corpusvault/snapshot/corpus"
)

// dataStore is a small opaque object-store adapter: one file per data key
// under Backend.blobDir, content-addressed by the caller-supplied key.
// Grounded on horos47/storage/documents.go's blob-table idea, simplified to
// whole-blob storage: nothing here requires chunked blob storage.
type dataStore Backend

func (d *dataStore) Get(_ context.Context, dataKey string) (corpus.Handle, error) {
	b := (*Backend)(d)
	b.logger.Debug("sqlstore: data get", "data_key", dataKey)
	path, err := b.blobPath(dataKey)
	if err != nil {
		return nil, corpus.NewError(corpus.KindValidationError, "sqlstore.data.get", err, "invalid data key")
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, corpus.NewError(corpus.KindNotFound, "sqlstore.data.get", nil, "no blob %s", dataKey)
	}
	if err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.data.get", err, "read %s", path)
		b.logger.Error("sqlstore: data get failed", "data_key", dataKey, "error", wrapped)
		return nil, wrapped
	}
	return corpus.BytesHandle(raw), nil
}

func (d *dataStore) Put(_ context.Context, dataKey string, r io.Reader) error {
	b := (*Backend)(d)
	b.logger.Debug("sqlstore: data put", "data_key", dataKey)
	path, err := b.blobPath(dataKey)
	if err != nil {
		return corpus.NewError(corpus.KindValidationError, "sqlstore.data.put", err, "invalid data key")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return corpus.NewError(corpus.KindStorageError, "sqlstore.data.put", err, "read stream")
	}
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.data.put", err, "mkdir")
		b.logger.Error("sqlstore: data put failed", "data_key", dataKey, "error", wrapped)
		return wrapped
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.data.put", err, "write %s", path)
		b.logger.Error("sqlstore: data put failed", "data_key", dataKey, "error", wrapped)
		return wrapped
	}
	return nil
}

func (d *dataStore) Delete(_ context.Context, dataKey string) error {
	b := (*Backend)(d)
	b.logger.Debug("sqlstore: data delete", "data_key", dataKey)
	path, err := b.blobPath(dataKey)
	if err != nil {
		return corpus.NewError(corpus.KindValidationError, "sqlstore.data.delete", err, "invalid data key")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		wrapped := corpus.NewError(corpus.KindStorageError, "sqlstore.data.delete", err, "remove %s", path)
		b.logger.Error("sqlstore: data delete failed", "data_key", dataKey, "error", wrapped)
		return wrapped
	}
	return nil
}

func (d *dataStore) Exists(_ context.Context, dataKey string) (bool, error) {
	b := (*Backend)(d)
	path, err := b.blobPath(dataKey)
	if err != nil {
		return false, corpus.NewError(corpus.KindValidationError, "sqlstore.data.exists", err, "invalid data key")
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, corpus.NewError(corpus.KindStorageError, "sqlstore.data.exists", err, "stat %s", path)
	}
	return true, nil
}
