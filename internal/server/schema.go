package server

// Schema version for migration management
const SchemaVersion = 1

// UsersTableSQL creates the accounts table
const UsersTableSQL = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

// DocumentsTableSQL creates the per-user document table. The body column
// holds the opaque JSON document; the server never looks inside it.
const DocumentsTableSQL = `
CREATE TABLE IF NOT EXISTS documents (
    user_id TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    updated_at INTEGER NOT NULL,

    FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

// SchemaVersionTableSQL tracks applied schema versions
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// EmailIndexSQL speeds up login lookups
const EmailIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

// AllTableSchemas returns all table creation statements in order
func AllTableSchemas() []string {
	return []string{
		UsersTableSQL,
		DocumentsTableSQL,
		SchemaVersionTableSQL,
	}
}

// AllIndexes returns all index creation statements
func AllIndexes() []string {
	return []string{
		EmailIndexSQL,
	}
}

// PragmaStatements returns the pragmas applied on every connection
func PragmaStatements() []string {
	return []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
}
