// Package corpus defines the core data model, error taxonomy, event hook,
// filter combinator, and pipe abstraction shared by the snapshot engine,
// every backend, and the observations subsystem.
package corpus

import "time"

// ParentRef records one edge of a SnapshotMeta's lineage DAG.
type ParentRef struct {
	StoreID string `json:"store_id" yaml:"store_id"`
	Version string `json:"version" yaml:"version"`
	Role    string `json:"role,omitempty" yaml:"role,omitempty"`
}

// SnapshotMeta is the unit of versioning. (StoreID, Version) is unique;
// content sharing the same (StoreID, ContentHash) shares DataKey.
type SnapshotMeta struct {
	StoreID     string      `json:"store_id" yaml:"store_id"`
	Version     string      `json:"version" yaml:"version"`
	ContentHash string      `json:"content_hash" yaml:"content_hash"`
	ContentType string      `json:"content_type" yaml:"content_type"`
	SizeBytes   int64       `json:"size_bytes" yaml:"size_bytes"`
	DataKey     string      `json:"data_key" yaml:"data_key"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	InvokedAt   *time.Time  `json:"invoked_at,omitempty" yaml:"invoked_at,omitempty"`
	Parents     []ParentRef `json:"parents,omitempty" yaml:"parents,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Snapshot pairs decoded data with its metadata. Data is a transient view;
// the metadata is what the store actually versions.
type Snapshot[T any] struct {
	Meta SnapshotMeta
	Data T
}

// DataKeyFunc overrides the default "<store_id>/<content_hash>" data key
// policy. It receives the fields a store-level policy may key on.
type DataKeyFunc func(storeID, version, contentHash string, tags []string) string

// DefaultDataKey is the default data key policy: <store_id>/<content_hash>.
func DefaultDataKey(storeID, _, contentHash string, _ []string) string {
	return storeID + "/" + contentHash
}

// PutOptions configures a single Engine.Put call.
type PutOptions struct {
	Parents   []ParentRef
	InvokedAt *time.Time
	Tags      []string
}

// ListOptions filters and bounds a metadata listing. Ordering is always
// created_at descending, ties broken by version descending.
type ListOptions struct {
	Before *time.Time
	After  *time.Time
	Tags   []string
	Limit  int
	// HasLimit distinguishes "limit:0 means no results" from "limit unset".
	HasLimit bool
	Cursor   string
}
