package ingotservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/nibi/internal/apperr"
	"github.com/starford/nibi/internal/checksum"
	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/render"
	"github.com/starford/nibi/internal/storage"
	"github.com/starford/nibi/internal/taxonomy"
)

const postDoc = "id: 7\ntags: go, ghost\ncategory: tech\nstatus: publish\n\nHello\n\nSome *body* text.\n\nupdated: 2024-05-01T00:00:00Z\n"

func testService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db, err := index.Open(filepath.Join(t.TempDir(), "nibi.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	tax, err := taxonomy.NewIndex(
		[]taxonomy.Category{{ID: 1, Name: "Technology", PathName: "tech"}},
		[]taxonomy.Tag{{ID: 10, Name: "Go", PathName: "go"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := index.NewIndexer(db, store, index.WithTaxonomy(tax), index.WithLogger(logger))
	return NewService(store, ix, render.New()), store
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Path: "posts/hello.ingot", Content: postDoc})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Checksum != checksum.Sum([]byte(postDoc)) {
		t.Errorf("checksum = %q", created.Checksum)
	}

	got, err := svc.Get(ctx, "posts/hello.ingot")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Ingot.Title != "Hello" || got.Ingot.ID != 7 {
		t.Errorf("record = %+v", got.Ingot)
	}
	if got.Ingot.PName != "hello" {
		t.Errorf("pname = %q, want hello", got.Ingot.PName)
	}
	if !strings.Contains(got.HTML, "<em>body</em>") {
		t.Errorf("html = %q", got.HTML)
	}
	if len(got.Unresolved) != 1 || !strings.Contains(got.Unresolved[0], "ghost") {
		t.Errorf("unresolved = %v", got.Unresolved)
	}
	if ids := got.Ingot.Tags.IDs; len(ids) != 1 || ids[0] != 10 {
		t.Errorf("tag ids = %v", ids)
	}
}

func TestCreate_Errors(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Path: "a.ingot"}); !errors.Is(err, ingot.ErrEmpty) {
		t.Errorf("blank create err = %v, want ErrEmpty", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Path: "a.txt", Content: "x"}); !errors.Is(err, apperr.ErrBadPath) {
		t.Errorf("bad extension err = %v, want ErrBadPath", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Path: "a.ingot", Content: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateInput{Path: "a.ingot", Content: "y"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreate_Scaffold(t *testing.T) {
	svc, store := testService(t)

	d, err := svc.Create(context.Background(), CreateInput{Title: "Fresh Start"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Path != "fresh-start.ingot" {
		t.Errorf("path = %q", d.Path)
	}
	if d.Ingot.Title != "Fresh Start" || d.Ingot.Status != ingot.StatusDraft {
		t.Errorf("record = %+v", d.Ingot)
	}
	if _, err := store.Read("fresh-start.ingot"); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestUpdate_IfMatch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateInput{Path: "p.ingot", Content: "v1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, "p.ingot", []byte("v2"), "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v, want ErrConflict", err)
	}
	up, err := svc.Update(ctx, "p.ingot", []byte("status: draft\n\nv2\n"), `"`+d.Checksum+`"`)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if up.Ingot.Title != "v2" {
		t.Errorf("title = %q, want v2", up.Ingot.Title)
	}
	if _, err := svc.Update(ctx, "missing.ingot", []byte("x"), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing update err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Path: "gone.ingot", Content: "bye"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "gone.ingot"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "gone.ingot"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if err := svc.Delete(ctx, "gone.ingot"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMove(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	for _, p := range []string{"old.ingot", "taken.ingot"} {
		if _, err := svc.Create(ctx, CreateInput{Path: p, Content: postDoc}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Move(ctx, "old.ingot", "taken.ingot"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("move onto existing err = %v", err)
	}
	if _, err := svc.Move(ctx, "nope.ingot", "x.ingot"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("move missing err = %v", err)
	}

	d, err := svc.Move(ctx, "old.ingot", "archive/new.ingot")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if d.Path != "archive/new.ingot" || d.Ingot.Title != "Hello" {
		t.Errorf("detail = %+v", d)
	}
	items, total, err := svc.List(ctx, index.ListFilter{Sort: "path"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || items[0].Path != "archive/new.ingot" {
		t.Errorf("index after move = %+v", items)
	}
}

func TestListAndSearch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	docs := map[string]string{
		"a.ingot": postDoc,
		"b.ingot": "status: draft\n\nDraft\n\nnothing here\n",
	}
	for p, c := range docs {
		if _, err := svc.Create(ctx, CreateInput{Path: p, Content: c}); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.List(ctx, index.ListFilter{Status: "publish"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || items[0].Path != "a.ingot" || items[0].Status != "publish" {
		t.Errorf("items = %+v, total = %d", items, total)
	}

	items, _, err = svc.List(ctx, index.ListFilter{Tag: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Tags[0] != 10 {
		t.Errorf("tag filter = %+v", items)
	}

	results, err := svc.Search(ctx, "body", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != "a.ingot" {
		t.Errorf("search = %+v", results)
	}
}

func TestParsePreview(t *testing.T) {
	svc, store := testService(t)

	d, err := svc.Parse(context.Background(), []byte("published: not a date\n\nPreview\n\nbody"))
	if err != nil {
		t.Fatal(err)
	}
	if d.Path != "" || d.Ingot.Title != "Preview" {
		t.Errorf("detail = %+v", d)
	}
	if len(d.Ingot.Issues) != 1 || d.Ingot.Issues[0].Key != "published" {
		t.Errorf("issues = %+v", d.Ingot.Issues)
	}
	metas, _ := store.List("")
	if len(metas) != 0 {
		t.Errorf("preview wrote files: %v", metas)
	}
}

func TestTaxonomyCounts(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{Path: "a.ingot", Content: postDoc}); err != nil {
		t.Fatal(err)
	}

	view, err := svc.Taxonomy(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Categories) != 1 || view.Categories[0].Count != 1 {
		t.Errorf("categories = %+v", view.Categories)
	}
	if len(view.Tags) != 1 || view.Tags[0].Count != 1 {
		t.Errorf("tags = %+v", view.Tags)
	}
}

func TestScaffold(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	doc := Scaffold("  My Post ", now)

	rec, err := ingot.ParseBytes(doc, ingot.WithStrict(true))
	if err != nil {
		t.Fatalf("scaffold does not parse strictly: %v\n%s", err, doc)
	}
	if rec.Title != "My Post" || rec.PName != "my-post" {
		t.Errorf("record = %+v", rec)
	}
	if !rec.Published.Equal(now) {
		t.Errorf("published = %v, want %v", rec.Published, now)
	}
	if PathFor("My Post") != "my-post.ingot" {
		t.Errorf("PathFor = %q", PathFor("My Post"))
	}
	if PathFor("   ") != "" {
		t.Error("blank title should give no path")
	}
}
