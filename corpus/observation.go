package corpus

import "time"

// Observation is a typed fact anchored to a location inside a snapshot.
// Content is the schema-validated payload, decoded into its generic
// JSON-shaped form (or left nil for a QueryMeta result).
type Observation struct {
	ID          string
	Type        string
	Source      SnapshotPointer
	Content     any
	Confidence  *float64
	ObservedAt  *time.Time
	CreatedAt   time.Time
	DerivedFrom []SnapshotPointer
}

// PutObservationInput is the caller-supplied payload for Observations.Put.
type PutObservationInput struct {
	Source      SnapshotPointer
	Content     any
	Confidence  *float64
	ObservedAt  *time.Time
	DerivedFrom []SnapshotPointer
}

// VersionResolution is what a VersionResolver returns for one store_id.
// A zero value (no versions) means "no resolution" — the caller falls back
// to the metadata store's latest version for that store.
type VersionResolution struct {
	Versions []string
}

// VersionResolver picks the canonical version(s) of a store for staleness
// filtering during a query.
type VersionResolver func(storeID string) VersionResolution

// ObservationQueryOptions selects and orders rows for Observations.Query /
// QueryMeta.
type ObservationQueryOptions struct {
	Type           []string
	HasType        bool
	SourceStore    string
	HasSourceStore bool
	SourceVersion  string
	HasSourceVersion bool
	SourcePrefix   string
	HasSourcePrefix  bool
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	ObservedAfter  *time.Time
	ObservedBefore *time.Time

	// IncludeStale disables the default staleness filter.
	IncludeStale bool
	// VersionResolver overrides the fallback-to-latest staleness policy.
	VersionResolver VersionResolver

	Limit    int
	HasLimit bool
}
