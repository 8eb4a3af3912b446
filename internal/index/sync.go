package index

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/nibi/internal/checksum"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/render"
	"github.com/starford/nibi/internal/storage"
	"github.com/starford/nibi/internal/taxonomy"
)

// Indexer parses ingot files and writes them into the DB.
type Indexer struct {
	db      *DB
	store   storage.Provider
	tax     *taxonomy.Index
	parse   []ingot.Option
	workers int
	logger  *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithTaxonomy resolves tag and category references before indexing.
func WithTaxonomy(tax *taxonomy.Index) IndexerOption {
	return func(ix *Indexer) { ix.tax = tax }
}

// WithParseOptions passes opts to every parse.
func WithParseOptions(opts ...ingot.Option) IndexerOption {
	return func(ix *Indexer) { ix.parse = opts }
}

// WithWorkers bounds how many files Sync parses at once.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

// NewIndexer returns an Indexer writing to db and reading from store.
func NewIndexer(db *DB, store storage.Provider, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		db:      db,
		store:   store,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// DB returns the database the indexer writes to.
func (ix *Indexer) DB() *DB { return ix.db }

// Taxonomy returns the configured taxonomy, possibly nil.
func (ix *Indexer) Taxonomy() *taxonomy.Index { return ix.tax }

// Load parses data as the ingot at path and resolves its references. extra
// options apply after the configured ones. The record is returned even when
// some references stay unresolved.
func (ix *Indexer) Load(path string, data []byte, extra ...ingot.Option) (*ingot.Ingot, []taxonomy.Unresolved, error) {
	opts := append([]ingot.Option{ingot.WithLogger(ix.logger)}, ix.parse...)
	opts = append(opts, extra...)
	rec, err := ingot.Parse(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("index: parse %s: %w", path, err)
	}
	rec.Path = path
	render.FillPName(rec)

	var missing []taxonomy.Unresolved
	if ix.tax != nil {
		missing = ix.tax.Resolve(rec)
		for _, u := range missing {
			ix.logger.Warn("index: unresolved reference",
				slog.String("path", path),
				slog.String("kind", string(u.Kind)),
				slog.String("key", u.Key.String()))
		}
	}
	return rec, missing, nil
}

// Row converts a loaded record into its index row.
func (ix *Indexer) Row(rec *ingot.Ingot, sum string) IngotRow {
	row := IngotRow{
		Path:      rec.Path,
		ID:        rec.ID,
		PName:     rec.PName,
		Title:     rec.Title,
		Excerpt:   rec.Excerpt,
		Status:    rec.Status.String(),
		Target:    rec.To.String(),
		Published: rec.Published,
		Modified:  rec.Modified,
		Checksum:  sum,
		Issues:    len(rec.Issues),
		UpdatedAt: time.Now(),
	}
	row.Tags, row.Terms = ix.terms(rec.Tags, taxonomy.KindTag, row.Terms)
	row.Categories, row.Terms = ix.terms(rec.Categories, taxonomy.KindCategory, row.Terms)
	return row
}

// terms returns the resolved ids of l and appends a searchable name for
// every entry to names.
func (ix *Indexer) terms(l ingot.RKeyList, kind taxonomy.Kind, names []string) ([]uint64, []string) {
	if !l.IsCollated() {
		for _, k := range l.Raw {
			names = append(names, k.String())
		}
		return nil, names
	}
	for _, id := range l.IDs {
		switch kind {
		case taxonomy.KindTag:
			if t, ok := ix.tax.Tag(id); ok {
				names = append(names, t.Name)
			}
		case taxonomy.KindCategory:
			if c, ok := ix.tax.Category(id); ok {
				names = append(names, c.Name)
			}
		}
	}
	return l.IDs, names
}

// IndexFile parses data and upserts it under path.
func (ix *Indexer) IndexFile(path string, data []byte) (*ingot.Ingot, error) {
	rec, _, err := ix.Load(path, data)
	if err != nil {
		return nil, err
	}
	if err := ix.db.UpsertIngot(ix.Row(rec, checksum.Sum(data)), rec.Content); err != nil {
		return nil, err
	}
	return rec, nil
}

// SyncStats summarises one Sync pass.
type SyncStats struct {
	Indexed   int `json:"indexed"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`
}

// Sync walks the project and brings the index up to date: new or changed
// files are parsed in parallel and upserted, and rows whose files are gone
// are deleted. Per-file failures are logged and counted, not returned.
func (ix *Indexer) Sync(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	metas, err := ix.store.List("")
	if err != nil {
		return stats, err
	}
	checksums, err := ix.db.AllChecksums()
	if err != nil {
		return stats, err
	}

	type parsed struct {
		row  IngotRow
		body string
	}
	results := make([]*parsed, len(metas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	disk := make(map[string]struct{}, len(metas))
	for i, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			stats.Unchanged++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := ix.store.Read(m.Path)
			if err != nil {
				ix.logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				return nil
			}
			rec, _, err := ix.Load(m.Path, data)
			if err != nil {
				ix.logger.Warn("sync: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				return nil
			}
			results[i] = &parsed{row: ix.Row(rec, checksum.Sum(data)), body: rec.Content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, m := range metas {
		if checksums[m.Path] == m.Checksum {
			continue
		}
		p := results[i]
		if p == nil {
			stats.Failed++
			continue
		}
		if err := ix.db.UpsertIngot(p.row, p.body); err != nil {
			ix.logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Failed++
			continue
		}
		stats.Indexed++
		ix.logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := ix.db.DeleteIngot(p); err != nil {
			ix.logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		ix.logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return stats, nil
}
