package db

// schemaStatements are applied in order by EnsureSchema.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cache_entries (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries (expires_at)`,
	`CREATE TABLE IF NOT EXISTS analyses (
		id           UUID PRIMARY KEY,
		job_title    TEXT NOT NULL DEFAULT '',
		company      TEXT NOT NULL DEFAULT '',
		job_url      TEXT NOT NULL DEFAULT '',
		score        DOUBLE PRECISION,
		match_level  TEXT,
		degraded     BOOLEAN NOT NULL DEFAULT FALSE,
		result       JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC)`,
}
