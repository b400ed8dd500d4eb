package index

import (
	"bytes"
	"database/sql"
	"fmt"
	"time"
)

// GetDocument retrieves an indexed document by URI.
func (db *DB) GetDocument(uri string) (*Document, error) {
	var doc Document
	query := `SELECT id, uri, checksum, last_updated FROM documents WHERE uri = ?`
	err := db.Conn.QueryRow(query, uri).
		Scan(&doc.ID, &doc.URI, &doc.Checksum, &doc.LastUpdated)

	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve document: %w", err)
	}

	return &doc, nil
}

// UpdateDocument replaces the indexed definitions of a document in one
// transaction. When the stored checksum already matches, the index is up to
// date and nothing is written.
func (db *DB) UpdateDocument(uri string, checksum []byte, defs []Definition) error {
	existing, err := db.GetDocument(uri)
	if err != nil && err != ErrDocumentNotFound {
		return err
	}
	if existing != nil && bytes.Equal(existing.Checksum, checksum) {
		return nil
	}

	tx, err := db.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var docID int64
	now := time.Now().Unix()
	if existing != nil {
		docID = existing.ID
		updateSQL := `UPDATE documents SET checksum = ?, last_updated = ? WHERE id = ?`
		if _, err := tx.Exec(updateSQL, checksum, now, docID); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM definitions WHERE document_id = ?`, docID); err != nil {
			return fmt.Errorf("failed to clear definitions: %w", err)
		}
	} else {
		insertSQL := `INSERT INTO documents (uri, checksum, last_updated) VALUES (?, ?, ?)`
		result, err := tx.Exec(insertSQL, uri, checksum, now)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		docID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get document id: %w", err)
		}
	}

	insertDefSQL := `
		INSERT INTO definitions (document_id, label, normalized_label, target, line)
		VALUES (?, ?, ?, ?, ?)`
	for _, def := range defs {
		if _, err := tx.Exec(insertDefSQL, docID, def.Label, def.NormalizedLabel, def.Target, def.Line); err != nil {
			return fmt.Errorf("failed to insert definition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Definitions returns the indexed definitions of a document in line order.
func (db *DB) Definitions(uri string) ([]Definition, error) {
	query := `
		SELECT d.label, d.normalized_label, d.target, d.line
		FROM definitions d
		JOIN documents doc ON d.document_id = doc.id
		WHERE doc.uri = ?
		ORDER BY d.line`
	rows, err := db.Conn.Query(query, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		var def Definition
		if err := rows.Scan(&def.Label, &def.NormalizedLabel, &def.Target, &def.Line); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error encountered while iterating over rows: %w", err)
	}

	return defs, nil
}

// DocumentsDefiningLabel returns the URIs of every document defining the
// given normalized label.
func (db *DB) DocumentsDefiningLabel(normalizedLabel string) ([]string, error) {
	query := `
		SELECT DISTINCT doc.uri
		FROM definitions d
		JOIN documents doc ON d.document_id = doc.id
		WHERE d.normalized_label = ?
		ORDER BY doc.uri`
	rows, err := db.Conn.Query(query, normalizedLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("failed to scan uri: %w", err)
		}
		uris = append(uris, uri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error encountered while iterating over rows: %w", err)
	}

	return uris, nil
}

// DeleteDocument removes a document and its definitions.
func (db *DB) DeleteDocument(uri string) error {
	tx, err := db.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteDefsSQL := `
		DELETE FROM definitions
		WHERE document_id IN (SELECT id FROM documents WHERE uri = ?)`
	if _, err := tx.Exec(deleteDefsSQL, uri); err != nil {
		return fmt.Errorf("failed to delete definitions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE uri = ?`, uri); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
