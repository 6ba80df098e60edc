package filestore

import (
	"context"
	"encoding/json"
	"os"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/observations"
)

// observationsAdapter implements observations.BaseAdapter over a single
// shared _observations.json file, matching filestore's
// one-file-per-concern layout.
type observationsAdapter Backend

func (a *observationsAdapter) readAll() ([]observations.Row, error) {
	b := (*Backend)(a)
	raw, err := os.ReadFile(b.observationsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "filestore.observations.read", err, "read")
	}
	var rows []observations.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, corpus.NewError(corpus.KindDecodeError, "filestore.observations.read", err, "decode")
	}
	return rows, nil
}

func (a *observationsAdapter) writeAll(rows []observations.Row) error {
	b := (*Backend)(a)
	raw, err := json.Marshal(rows)
	if err != nil {
		return corpus.NewError(corpus.KindEncodeError, "filestore.observations.write", err, "encode")
	}
	if err := os.WriteFile(b.observationsPath(), raw, 0o644); err != nil {
		return corpus.NewError(corpus.KindStorageError, "filestore.observations.write", err, "write")
	}
	return nil
}

func (a *observationsAdapter) GetAll(context.Context) ([]observations.Row, error) {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	return a.readAll()
}

func (a *observationsAdapter) SetAll(_ context.Context, rows []observations.Row) error {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	return a.writeAll(rows)
}

func (a *observationsAdapter) GetOne(_ context.Context, id string) (observations.Row, bool, error) {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	rows, err := a.readAll()
	if err != nil {
		return observations.Row{}, false, err
	}
	for _, r := range rows {
		if r.ID == id {
			return r, true, nil
		}
	}
	return observations.Row{}, false, nil
}

func (a *observationsAdapter) AddOne(_ context.Context, row observations.Row) error {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	rows, err := a.readAll()
	if err != nil {
		return err
	}
	rows = append(rows, row)
	return a.writeAll(rows)
}

func (a *observationsAdapter) RemoveOne(_ context.Context, id string) (bool, error) {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	rows, err := a.readAll()
	if err != nil {
		return false, err
	}
	kept := rows[:0]
	removed := false
	for _, r := range rows {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return false, nil
	}
	return true, a.writeAll(kept)
}
