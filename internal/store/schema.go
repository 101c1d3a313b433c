package store

// Schema holds only the catalog response cache. Download jobs live in memory.
const Schema = `
CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at);
`
