package corpus

import "sort"

// Predicate is one optional filter clause passed to Apply. Active is false
// when the corresponding option field was not supplied by the caller, in
// which case the predicate is skipped entirely: a predicate only applies
// when its keyed option was actually supplied.
type Predicate[T any] struct {
	Active bool
	Match  func(T) bool
}

// Apply runs the declarative filter+sort+limit combinator used by both
// in-memory metadata listing and in-memory observation querying (spec
// §4.10): every active predicate must match (AND semantics), results are
// sorted by less, and limit is applied after sorting.
func Apply[T any](rows []T, preds []Predicate[T], less func(a, b T) bool, limit int, hasLimit bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if hasLimit {
		if limit < 0 {
			limit = 0
		}
		if limit < len(out) {
			out = out[:limit]
		}
	}
	return out
}

func matchesAll[T any](r T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p.Active && !p.Match(r) {
			return false
		}
	}
	return true
}
