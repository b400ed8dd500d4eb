// Package index persists the link-reference definitions of workspace
// documents in a SQLite database, enabling cross-document label lookups and
// cheap re-validation via content checksums.
package index

import (
	"crypto/md5"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Database schema version
const SchemaVersion = 1

var ErrDocumentNotFound = fmt.Errorf("document does not exist in index")

// DB wraps the SQLite connection backing the workspace index.
type DB struct {
	Conn *sql.DB
}

// Open initializes the SQLite database at path, creating the schema if it
// does not exist.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.setup(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	return db, nil
}

func (db *DB) setup() error {
	tx, err := db.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.createTables(tx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (db *DB) createTables(tx *sql.Tx) error {
	createDocumentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uri TEXT UNIQUE NOT NULL,
		checksum BLOB NOT NULL,
		last_updated INTEGER NOT NULL
	);
	`

	createDefinitionsTable := `
	CREATE TABLE IF NOT EXISTS definitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		normalized_label TEXT NOT NULL,
		target TEXT NOT NULL,
		line INTEGER NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);
	`

	if _, err := tx.Exec(createDocumentsTable); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	if _, err := tx.Exec(createDefinitionsTable); err != nil {
		return fmt.Errorf("failed to create definitions table: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// Checksum returns the raw MD5 checksum of content.
func Checksum(content []byte) []byte {
	hash := md5.New()
	hash.Write(content)
	return hash.Sum(nil)
}
