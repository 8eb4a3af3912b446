package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/nibi/internal/apperr"
)

// Term kinds stored in ingot_terms.
const (
	TermTag      = "tag"
	TermCategory = "category"
)

// IngotRow represents a row in the ingots table.
type IngotRow struct {
	Path       string
	ID         uint64
	PName      string
	Title      string
	Excerpt    string
	Status     string
	Target     string
	Published  time.Time
	Modified   time.Time
	Checksum   string
	Tags       []uint64
	Categories []uint64
	// Terms holds the display names of tags and categories for search.
	Terms     []string
	Issues    int
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ListFilter narrows and orders ListIngots. Zero fields do not filter.
type ListFilter struct {
	Status   string
	Target   string
	Tag      uint64
	Category uint64
	// Sort is one of "published", "modified", "title" or "path", optionally
	// prefixed with "-" for descending order. The default is "-published".
	Sort   string
	Limit  int
	Offset int
}

var sortColumns = map[string]string{
	"published": "published",
	"modified":  "modified",
	"title":     "title",
	"path":      "path",
}

func (f ListFilter) orderBy() string {
	key, dir := f.Sort, "ASC"
	if key == "" {
		key = "-published"
	}
	if strings.HasPrefix(key, "-") {
		key, dir = key[1:], "DESC"
	}
	col, ok := sortColumns[key]
	if !ok {
		col, dir = "published", "DESC"
	}
	return fmt.Sprintf("%s %s, path ASC", col, dir)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// UpsertIngot inserts or replaces an ingot, its term rows and its FTS entry
// within a transaction.
func (db *DB) UpsertIngot(r IngotRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(nonNil(r.Tags))
	catsJSON, _ := json.Marshal(nonNil(r.Categories))
	terms := strings.Join(r.Terms, " ")
	updated := r.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO ingots (path, id, pname, title, excerpt, status, target, published, modified,
		                    checksum, tags, categories, terms, body, issues, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id         = excluded.id,
			pname      = excluded.pname,
			title      = excluded.title,
			excerpt    = excluded.excerpt,
			status     = excluded.status,
			target     = excluded.target,
			published  = excluded.published,
			modified   = excluded.modified,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			categories = excluded.categories,
			terms      = excluded.terms,
			body       = excluded.body,
			issues     = excluded.issues,
			updated_at = excluded.updated_at
	`, r.Path, int64(r.ID), r.PName, r.Title, r.Excerpt, r.Status, r.Target,
		nullTime(r.Published), nullTime(r.Modified), r.Checksum,
		string(tagsJSON), string(catsJSON), terms, body, r.Issues, updated)
	if err != nil {
		return fmt.Errorf("index: upsert ingot: %w", err)
	}

	if err := ftsUpsert(tx, r.Path, r.Title, body, terms); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM ingot_terms WHERE path = ?`, r.Path); err != nil {
		return fmt.Errorf("index: clear terms: %w", err)
	}
	if len(r.Tags)+len(r.Categories) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO ingot_terms (path, kind, term_id) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare term insert: %w", err)
		}
		defer stmt.Close()
		for kind, ids := range map[string][]uint64{TermTag: r.Tags, TermCategory: r.Categories} {
			for _, id := range ids {
				if _, err := stmt.Exec(r.Path, kind, int64(id)); err != nil {
					return fmt.Errorf("index: insert term: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}

// DeleteIngot removes an ingot, its term rows and its FTS entry.
func (db *DB) DeleteIngot(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM ingot_terms WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete terms: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ingots WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete ingot: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for an ingot, or "" if it is not
// indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM ingots WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed ingot.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM ingots`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const rowColumns = `path, id, pname, title, excerpt, status, target, published, modified,
	checksum, tags, categories, terms, issues, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (IngotRow, error) {
	var (
		r                 IngotRow
		id                int64
		published, mod    sql.NullTime
		tags, cats, terms string
	)
	if err := s.Scan(&r.Path, &id, &r.PName, &r.Title, &r.Excerpt, &r.Status, &r.Target,
		&published, &mod, &r.Checksum, &tags, &cats, &terms, &r.Issues, &r.UpdatedAt); err != nil {
		return r, err
	}
	r.ID = uint64(id)
	r.Published = published.Time
	r.Modified = mod.Time
	_ = json.Unmarshal([]byte(tags), &r.Tags)
	_ = json.Unmarshal([]byte(cats), &r.Categories)
	r.Terms = strings.Fields(terms)
	return r, nil
}

// GetIngot returns the row for path or an error wrapping apperr.ErrNotFound.
func (db *DB) GetIngot(path string) (*IngotRow, error) {
	r, err := scanRow(db.conn.QueryRow(`SELECT `+rowColumns+` FROM ingots WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: ingot %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get ingot: %w", err)
	}
	return &r, nil
}

// ListIngots returns one page of rows matching f and the total match count.
func (db *DB) ListIngots(f ListFilter) ([]IngotRow, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Target != "" {
		where = append(where, "target = ?")
		args = append(args, f.Target)
	}
	if f.Tag != 0 {
		where = append(where, "path IN (SELECT path FROM ingot_terms WHERE kind = ? AND term_id = ?)")
		args = append(args, TermTag, int64(f.Tag))
	}
	if f.Category != 0 {
		where = append(where, "path IN (SELECT path FROM ingot_terms WHERE kind = ? AND term_id = ?)")
		args = append(args, TermCategory, int64(f.Category))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM ingots`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count ingots: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + rowColumns + ` FROM ingots` + cond +
		` ORDER BY ` + f.orderBy() + ` LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, max(f.Offset, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list ingots: %w", err)
	}
	defer rows.Close()

	var out []IngotRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("index: scan ingot: %w", err)
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// TermCounts returns term id → number of ingots for one term kind.
func (db *DB) TermCounts(kind string) (map[uint64]int, error) {
	rows, err := db.conn.Query(`SELECT term_id, count(*) FROM ingot_terms WHERE kind = ? GROUP BY term_id`, kind)
	if err != nil {
		return nil, fmt.Errorf("index: term counts: %w", err)
	}
	defer rows.Close()
	out := make(map[uint64]int)
	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[uint64(id)] = n
	}
	return out, rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
