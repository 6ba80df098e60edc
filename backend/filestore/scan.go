package filestore

import (
	"os"
	"path/filepath"

	"github.com/corpusvault/snapshot/corpus"
)

func dirOf(path string) string { return filepath.Dir(path) }

// scanChildren walks every store directory under the backend's base,
// looking for SnapshotMeta rows whose parents reference
// (parentStoreID, parentVersion). Unlike Get/Put/List, this is the one
// metadataStore operation whose result may span multiple stores, since a
// snapshot's parents can name any store.
func (m *metadataStore) scanChildren(parentStoreID, parentVersion string) ([]corpus.SnapshotMeta, error) {
	b := (*Backend)(m)
	dirEntries, err := os.ReadDir(b.base)
	if err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "filestore.metadata.get_children", err, "list base dir")
	}

	var out []corpus.SnapshotMeta
	for _, de := range dirEntries {
		if !de.IsDir() || de.Name() == dataDirName {
			continue
		}
		entries, err := m.readAll(de.Name())
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			for _, p := range e.Meta.Parents {
				if p.StoreID == parentStoreID && p.Version == parentVersion {
					out = append(out, e.Meta)
					break
				}
			}
		}
	}
	return applyListOptions(out, corpus.ListOptions{}), nil
}
