package filestore

import (
	"encoding/json"
	"fmt"

	"github.com/corpusvault/snapshot/corpus"
)

// metaEntry is one row of a store's _meta.json file: a [version, meta] pair
//, not an object, so it round-trips through a 2-element JSON array
// instead of the usual struct-tag marshaling.
type metaEntry struct {
	Version string
	Meta    corpus.SnapshotMeta
}

func (e metaEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Version, e.Meta})
}

func (e *metaEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("filestore: decode meta entry: %w", err)
	}
	if err := json.Unmarshal(pair[0], &e.Version); err != nil {
		return fmt.Errorf("filestore: decode meta entry version: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Meta); err != nil {
		return fmt.Errorf("filestore: decode meta entry meta: %w", err)
	}
	return nil
}
