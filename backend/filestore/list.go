package filestore

import (
	"github.com/corpusvault/snapshot/corpus"
)

// applyListOptions filters rows by before/after/tags, sorts by created_at
// desc then version desc, and applies limit last. Identical combinator to
// backend/memory's, since both stores hold the same []corpus.SnapshotMeta
// shape once loaded from disk.
func applyListOptions(rows []corpus.SnapshotMeta, opts corpus.ListOptions) []corpus.SnapshotMeta {
	var preds []corpus.Predicate[corpus.SnapshotMeta]
	if opts.Before != nil {
		before := *opts.Before
		preds = append(preds, corpus.Predicate[corpus.SnapshotMeta]{
			Active: true,
			Match:  func(m corpus.SnapshotMeta) bool { return m.CreatedAt.Before(before) },
		})
	}
	if opts.After != nil {
		after := *opts.After
		preds = append(preds, corpus.Predicate[corpus.SnapshotMeta]{
			Active: true,
			Match:  func(m corpus.SnapshotMeta) bool { return m.CreatedAt.After(after) },
		})
	}
	if len(opts.Tags) > 0 {
		want := opts.Tags
		preds = append(preds, corpus.Predicate[corpus.SnapshotMeta]{
			Active: true,
			Match:  func(m corpus.SnapshotMeta) bool { return hasAllTags(m.Tags, want) },
		})
	}

	less := func(a, b corpus.SnapshotMeta) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Version > b.Version
	}

	return corpus.Apply(rows, preds, less, opts.Limit, opts.HasLimit)
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
