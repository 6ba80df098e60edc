package observations

import (
	"log/slog"

	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/idgen"
)

// Config configures a Client.
type Config struct {
	// Types registers every observation type this client accepts puts for.
	Types []TypeDef

	// Metadata resolves the staleness fallback: the latest version of a
	// store, used when a query's VersionResolver is nil.
	Metadata corpus.MetadataStore

	// IDGenerator produces observation IDs. Default: obs_<timestamp36>_<random36>
	IDGenerator idgen.Generator

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.IDGenerator == nil {
		c.IDGenerator = idgen.Prefixed("obs_", idgen.Joined("_", idgen.Base36Timestamp(), idgen.Base36Random(12)))
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
