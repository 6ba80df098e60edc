// Package layered implements a composite corpus.Backend over an ordered
// list of read backends and an ordered list of write backends.
// Reads fall back down the read list on not_found; writes fan out across
// the write list and stop at the first failure. Grounded on the same
// Config-with-defaults idiom as observations.Config and sqlstore.Config.
package layered

import (
	"log/slog"

	"github.com/corpusvault/snapshot/corpus"
)

// ListStrategy picks how List results from multiple read backends combine.
type ListStrategy string

const (
	// ListMerge gathers pages from every read backend, dedupes by version
	// (first occurrence wins), sorts by created_at descending, then
	// applies the caller's limit.
	ListMerge ListStrategy = "merge"
	// ListFirst yields only the first read backend's results.
	ListFirst ListStrategy = "first"
)

// Config configures a layered Backend.
type Config struct {
	// Read is the ordered fallback chain for all read operations.
	Read []corpus.Backend
	// Write is the ordered fanout chain for all write operations.
	Write []corpus.Backend

	ListStrategy ListStrategy
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.ListStrategy == "" {
		c.ListStrategy = ListMerge
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Backend composites Config.Read/Config.Write into a single corpus.Backend.
// The zero value is not usable; construct with New.
type Backend struct {
	cfg Config
	obs corpus.Observations
}

// New builds a layered Backend. Observations() routes reads to the first
// Read backend offering observations and fans Put/Delete/DeleteBySource out
// to every Write backend offering them; it returns nil only when no Read and
// no Write backend offers observations.
func New(cfg Config) *Backend {
	cfg.defaults()
	b := &Backend{cfg: cfg}
	b.obs = newObservationsRouter(cfg)
	return b
}

func (b *Backend) Metadata() corpus.MetadataStore    { return (*metadataStore)(b) }
func (b *Backend) Data() corpus.DataStore            { return (*dataStore)(b) }
func (b *Backend) Observations() corpus.Observations { return b.obs }
func (b *Backend) OnEvent() corpus.EventFunc         { return nil }
