//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS ingots_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			terms,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, body, terms string) error {
	_, _ = tx.Exec(`DELETE FROM ingots_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO ingots_fts (path, title, body, terms) VALUES (?, ?, ?, ?)`,
		path, title, body, terms)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM ingots_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search and returns ranked hits with
// highlighted snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(ingots_fts, 2, '<b>', '</b>', '...', 64)
		FROM ingots_fts
		WHERE ingots_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
