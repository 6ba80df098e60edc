package filestore

import (
	"context"
	"io"
	"os"

	"github.com/corpusvault/snapshot/corpus"
)

type dataStore Backend

func (d *dataStore) Get(_ context.Context, dataKey string) (corpus.Handle, error) {
	b := (*Backend)(d)
	path, err := b.dataPath(dataKey)
	if err != nil {
		return nil, corpus.NewError(corpus.KindValidationError, "filestore.data.get", err, "invalid data key")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, corpus.NewError(corpus.KindNotFound, "filestore.data.get", nil, "no blob %s", dataKey)
	}
	if err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "filestore.data.get", err, "read %s", path)
	}
	return corpus.BytesHandle(raw), nil
}

func (d *dataStore) Put(_ context.Context, dataKey string, r io.Reader) error {
	b := (*Backend)(d)
	path, err := b.dataPath(dataKey)
	if err != nil {
		return corpus.NewError(corpus.KindValidationError, "filestore.data.put", err, "invalid data key")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return corpus.NewError(corpus.KindStorageError, "filestore.data.put", err, "read stream")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return corpus.NewError(corpus.KindStorageError, "filestore.data.put", err, "mkdir")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return corpus.NewError(corpus.KindStorageError, "filestore.data.put", err, "write %s", path)
	}
	return nil
}

func (d *dataStore) Delete(_ context.Context, dataKey string) error {
	b := (*Backend)(d)
	path, err := b.dataPath(dataKey)
	if err != nil {
		return corpus.NewError(corpus.KindValidationError, "filestore.data.delete", err, "invalid data key")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return corpus.NewError(corpus.KindStorageError, "filestore.data.delete", err, "remove %s", path)
	}
	return nil
}

func (d *dataStore) Exists(_ context.Context, dataKey string) (bool, error) {
	b := (*Backend)(d)
	path, err := b.dataPath(dataKey)
	if err != nil {
		return false, corpus.NewError(corpus.KindValidationError, "filestore.data.exists", err, "invalid data key")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, corpus.NewError(corpus.KindStorageError, "filestore.data.exists", err, "stat %s", path)
	}
	return true, nil
}
