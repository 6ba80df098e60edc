package engine

import (
	"log/slog"

	"github.com/corpusvault/snapshot/corpus"
)

// Config configures an Engine.
type Config struct {
	// StoreID identifies this engine's logical store.
	StoreID string

	// DataKey overrides the default "<store_id>/<content_hash>" data key
	// policy (corpus.DefaultDataKey).
	DataKey corpus.DataKeyFunc

	// Logger for structured operation logging.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.DataKey == nil {
		c.DataKey = corpus.DefaultDataKey
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
