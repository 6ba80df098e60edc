package memory

import (
	"context"

	"github.com/corpusvault/snapshot/observations"
)

// observationsAdapter implements observations.BaseAdapter over the
// Backend's own mutex-guarded map, matching the same storage shape as
// metadata/data instead of requiring a second store.
type observationsAdapter Backend

func (a *observationsAdapter) GetAll(context.Context) ([]observations.Row, error) {
	b := (*Backend)(a)
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]observations.Row, 0, len(b.obsRows))
	for _, r := range b.obsRows {
		out = append(out, r)
	}
	return out, nil
}

func (a *observationsAdapter) SetAll(_ context.Context, rows []observations.Row) error {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.obsRows = make(map[string]observations.Row, len(rows))
	for _, r := range rows {
		b.obsRows[r.ID] = r
	}
	return nil
}

func (a *observationsAdapter) GetOne(_ context.Context, id string) (observations.Row, bool, error) {
	b := (*Backend)(a)
	b.mu.RLock()
	defer b.mu.RUnlock()
	row, ok := b.obsRows[id]
	return row, ok, nil
}

func (a *observationsAdapter) AddOne(_ context.Context, row observations.Row) error {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.obsRows[row.ID] = row
	return nil
}

func (a *observationsAdapter) RemoveOne(_ context.Context, id string) (bool, error) {
	b := (*Backend)(a)
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.obsRows[id]
	delete(b.obsRows, id)
	return ok, nil
}
