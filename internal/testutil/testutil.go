// Package testutil provides shared test helpers for setting up projects,
// databases and the ingot service.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingotservice"
	"github.com/starford/nibi/internal/render"
	"github.com/starford/nibi/internal/storage"
	"github.com/starford/nibi/internal/taxonomy"
)

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "nibi-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestProject creates a temporary ingots directory with a storage.Provider.
func TestProject(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestTaxonomy returns one category (1 "Technology", pname tech) and two
// tags (10 "Go", 11 "Web").
func TestTaxonomy(t *testing.T) *taxonomy.Index {
	t.Helper()
	tax, err := taxonomy.NewIndex(
		[]taxonomy.Category{{ID: 1, Name: "Technology", PathName: "tech"}},
		[]taxonomy.Tag{{ID: 10, Name: "Go", PathName: "go"}, {ID: 11, Name: "Web", PathName: "web"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tax
}

// TestService wires a service over a fresh project and database. tax may
// be nil.
func TestService(t *testing.T, tax *taxonomy.Index) (*ingotservice.Service, *storage.FS) {
	t.Helper()
	_, store := TestProject(t)
	opts := []index.IndexerOption{index.WithLogger(QuietLogger())}
	if tax != nil {
		opts = append(opts, index.WithTaxonomy(tax))
	}
	ix := index.NewIndexer(TestDB(t), store, opts...)
	return ingotservice.NewService(store, ix, render.New()), store
}
