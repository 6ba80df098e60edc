package observations

import (
	"context"

	"github.com/corpusvault/snapshot/corpus"
)

// storage wraps a BaseAdapter into the uniform ObservationsStorage surface
// the Client depends on, delegating to OptimizedAdapter when
// the backend provides one.
type storage struct {
	base BaseAdapter
	opt  OptimizedAdapter
}

func newStorage(adapter BaseAdapter) *storage {
	opt, _ := adapter.(OptimizedAdapter)
	return &storage{base: adapter, opt: opt}
}

func (s *storage) putRow(ctx context.Context, row Row) error {
	return s.base.AddOne(ctx, row)
}

func (s *storage) getRow(ctx context.Context, id string) (Row, bool, error) {
	return s.base.GetOne(ctx, id)
}

func (s *storage) deleteRow(ctx context.Context, id string) (bool, error) {
	return s.base.RemoveOne(ctx, id)
}

func (s *storage) queryRows(ctx context.Context, opts corpus.ObservationQueryOptions) ([]Row, error) {
	if s.opt != nil {
		return s.opt.Query(ctx, opts)
	}
	all, err := s.base.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterRows(all, opts), nil
}

func (s *storage) deleteBySource(ctx context.Context, ptr corpus.SnapshotPointer) (int, error) {
	if s.opt != nil {
		return s.opt.DeleteBySource(ctx, ptr)
	}
	all, err := s.base.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	keep := make([]Row, 0, len(all))
	removed := 0
	for _, r := range all {
		if matchesSource(r, ptr) {
			removed++
			continue
		}
		keep = append(keep, r)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.base.SetAll(ctx, keep); err != nil {
		return 0, err
	}
	return removed, nil
}

func matchesSource(r Row, ptr corpus.SnapshotPointer) bool {
	if r.SourceStoreID != ptr.StoreID || r.SourceVersion != ptr.Version {
		return false
	}
	if ptr.Path != "" && r.SourcePath != ptr.Path {
		return false
	}
	return true
}

// filterRows implements the fallback in-memory filter+sort+limit pipeline
// used when a backend offers no OptimizedAdapter.
func filterRows(rows []Row, opts corpus.ObservationQueryOptions) []Row {
	var preds []corpus.Predicate[Row]

	if opts.HasType && len(opts.Type) > 0 {
		wanted := make(map[string]struct{}, len(opts.Type))
		for _, t := range opts.Type {
			wanted[t] = struct{}{}
		}
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool {
			_, ok := wanted[r.Type]
			return ok
		}})
	}
	if opts.HasSourceStore {
		want := opts.SourceStore
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool { return r.SourceStoreID == want }})
	}
	if opts.HasSourceVersion {
		want := opts.SourceVersion
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool { return r.SourceVersion == want }})
	}
	if opts.HasSourcePrefix {
		want := opts.SourcePrefix
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool { return hasPrefix(r.SourceVersion, want) }})
	}
	if opts.CreatedAfter != nil {
		after := *opts.CreatedAfter
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool { return r.CreatedAt.After(after) }})
	}
	if opts.CreatedBefore != nil {
		before := *opts.CreatedBefore
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool { return r.CreatedAt.Before(before) }})
	}
	if opts.ObservedAfter != nil {
		after := *opts.ObservedAfter
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool {
			return r.ObservedAt != nil && r.ObservedAt.After(after)
		}})
	}
	if opts.ObservedBefore != nil {
		before := *opts.ObservedBefore
		preds = append(preds, corpus.Predicate[Row]{Active: true, Match: func(r Row) bool {
			return r.ObservedAt != nil && r.ObservedAt.Before(before)
		}})
	}

	less := func(a, b Row) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	return corpus.Apply(rows, preds, less, opts.Limit, opts.HasLimit)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
