package storage

// Schema is the SQLite schema for the audit trail.
const Schema = `
CREATE TABLE IF NOT EXISTS query_records (
	id                TEXT PRIMARY KEY,
	timestamp         INTEGER NOT NULL,
	identifier        TEXT NOT NULL,
	language          TEXT NOT NULL,
	signals           TEXT NOT NULL,
	snapshot_version  TEXT NOT NULL,
	applied_documents TEXT NOT NULL,
	topic_count       INTEGER NOT NULL,
	conflict_count    INTEGER NOT NULL,
	duration_us       INTEGER NOT NULL,
	error             TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_query_records_timestamp
	ON query_records (timestamp);

CREATE INDEX IF NOT EXISTS idx_query_records_identifier
	ON query_records (identifier);
`
