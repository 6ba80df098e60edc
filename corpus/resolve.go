package corpus

import (
	"context"
	"encoding/json"
)

// ResolvePointer implements resolve_pointer: look up the
// snapshot a pointer addresses, decode it into its generic JSON-shaped
// form, walk pointer.Path, then apply pointer.Span if the resolved value is
// a string. The pointer's own path/span narrow the result to an arbitrary
// shape, so the result is untyped; callers with a known T should walk the
// pointer down to a whole snapshot (empty path/span) and decode with their
// own Codec instead.
func ResolvePointer(ctx context.Context, backend Backend, pointer SnapshotPointer) (any, error) {
	meta, err := backend.Metadata().Get(ctx, pointer.StoreID, pointer.Version)
	if err != nil {
		return nil, err
	}

	handle, err := backend.Data().Get(ctx, meta.DataKey)
	if err != nil {
		return nil, err
	}
	raw, err := handle.Bytes(ctx)
	if err != nil {
		return nil, NewError(KindStorageError, "resolve_pointer", err, "read data blob")
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		// Non-JSON payload (text/binary codec): only the root pointer is
		// resolvable, as the plain decoded string.
		value = string(raw)
	}

	segments, err := ParsePath(pointer.Path)
	if err != nil {
		return nil, err
	}
	resolved, err := ResolvePath(value, segments)
	if err != nil {
		return nil, err
	}

	if pointer.Span != nil {
		if s, ok := resolved.(string); ok {
			spanned, err := ApplySpan(s, *pointer.Span)
			if err != nil {
				return nil, err
			}
			return spanned, nil
		}
	}
	return resolved, nil
}
