package sqlstore

// schema is the embedded-SQL schema for a SQLite-family database:
// corpus_snapshots and corpus_observations, plus their lookup indexes.
// Grounded on domregistry/internal/store's Open-with-schema idiom
// (CREATE TABLE IF NOT EXISTS executed once at open time).
const schema = `
CREATE TABLE IF NOT EXISTS corpus_snapshots (
	store_id     TEXT NOT NULL,
	version      TEXT NOT NULL,
	parents      TEXT NOT NULL DEFAULT '[]',
	created_at   TEXT NOT NULL,
	invoked_at   TEXT,
	content_hash TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes   INTEGER NOT NULL,
	data_key     TEXT NOT NULL,
	tags         TEXT,
	PRIMARY KEY (store_id, version)
);
CREATE INDEX IF NOT EXISTS idx_corpus_snapshots_store_created
	ON corpus_snapshots (store_id, created_at);
CREATE INDEX IF NOT EXISTS idx_corpus_snapshots_store_hash
	ON corpus_snapshots (store_id, content_hash);
CREATE INDEX IF NOT EXISTS idx_corpus_snapshots_data_key
	ON corpus_snapshots (data_key);

CREATE TABLE IF NOT EXISTS corpus_observations (
	id                 TEXT PRIMARY KEY,
	type               TEXT NOT NULL,
	source_store_id    TEXT NOT NULL,
	source_version     TEXT NOT NULL,
	source_path        TEXT,
	source_span_start  INTEGER,
	source_span_end    INTEGER,
	content            TEXT NOT NULL,
	confidence         REAL,
	observed_at        TEXT,
	created_at         TEXT NOT NULL,
	derived_from       TEXT
);
CREATE INDEX IF NOT EXISTS idx_corpus_observations_type
	ON corpus_observations (type);
CREATE INDEX IF NOT EXISTS idx_corpus_observations_source
	ON corpus_observations (source_store_id, source_version);
CREATE INDEX IF NOT EXISTS idx_corpus_observations_type_observed
	ON corpus_observations (type, observed_at);
CREATE INDEX IF NOT EXISTS idx_corpus_observations_type_source
	ON corpus_observations (type, source_store_id);
`
