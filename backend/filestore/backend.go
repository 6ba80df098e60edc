// Package filestore implements corpus.Backend on the local filesystem:
// one _meta.json per store, a shared content-addressed _data directory,
// and a single _observations.json.
// Grounded on horos47/storage/documents.go's JSON-as-TEXT persistence
// idiom, guarded against path traversal with pathsafe.
package filestore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/observations"
	"github.com/corpusvault/snapshot/pathsafe"
)

const (
	dataDirName    = "_data"
	obsFileName    = "_observations.json"
	metaFileName   = "_meta.json"
	dataFileSuffix = ".bin"
)

// Backend is a corpus.Backend rooted at a base directory on disk. The zero
// value is not usable; construct with New.
type Backend struct {
	mu   sync.Mutex
	base string
	hook corpus.EventFunc
	obs  *observations.Client
}

// New creates a Backend rooted at base, creating base and its _data
// subdirectory if they do not already exist. hook may be nil.
func New(base string, hook corpus.EventFunc, obsTypes ...observations.TypeDef) (*Backend, error) {
	if err := os.MkdirAll(filepath.Join(base, dataDirName), 0o755); err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "filestore.new", err, "create base directory")
	}
	b := &Backend{base: base, hook: hook}
	b.obs = observations.New(observations.Config{
		Types:    obsTypes,
		Metadata: (*metadataStore)(b),
	}, (*observationsAdapter)(b))
	return b, nil
}

func (b *Backend) Metadata() corpus.MetadataStore    { return (*metadataStore)(b) }
func (b *Backend) Data() corpus.DataStore            { return (*dataStore)(b) }
func (b *Backend) Observations() corpus.Observations { return b.obs }
func (b *Backend) OnEvent() corpus.EventFunc         { return b.hook }

func (b *Backend) storeDir(storeID string) (string, error) {
	if err := pathsafe.ValidateIdentifier(storeID); err != nil {
		return "", corpus.NewError(corpus.KindValidationError, "filestore.store_dir", err, "invalid store id")
	}
	return pathsafe.SafePath(b.base, storeID)
}

func (b *Backend) metaPath(storeID string) (string, error) {
	dir, err := b.storeDir(storeID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, metaFileName), nil
}

func (b *Backend) dataPath(dataKey string) (string, error) {
	escaped := escapeDataKey(dataKey)
	return pathsafe.SafePath(filepath.Join(b.base, dataDirName), escaped+dataFileSuffix)
}

func (b *Backend) observationsPath() string {
	return filepath.Join(b.base, obsFileName)
}

func escapeDataKey(dataKey string) string {
	out := make([]byte, 0, len(dataKey))
	for i := 0; i < len(dataKey); i++ {
		if dataKey[i] == '/' {
			out = append(out, '_')
		} else {
			out = append(out, dataKey[i])
		}
	}
	return string(out)
}
