package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/nibi/internal/ingot"
)

const categoriesYAML = `
- id: 1
  pname: tech
  name: Technology
- id: 2
  pname: go
  name: Go
  parent: 1
- id: 3
  name: Life Notes
`

const tagsYAML = `
- id: 10
  name: Static Site
- id: 11
  pname: go
  name: golang
`

func mustIndex(t *testing.T) *Index {
	t.Helper()
	cats, err := DecodeCategories(strings.NewReader(categoriesYAML))
	if err != nil {
		t.Fatalf("DecodeCategories: %v", err)
	}
	tags, err := DecodeTags(strings.NewReader(tagsYAML))
	if err != nil {
		t.Fatalf("DecodeTags: %v", err)
	}
	idx, err := NewIndex(cats, tags)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

func TestDecodeCategories_DerivesPathName(t *testing.T) {
	cats, err := DecodeCategories(strings.NewReader(categoriesYAML))
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 {
		t.Fatalf("got %d categories, want 3", len(cats))
	}
	if cats[2].PathName == "" || strings.Contains(cats[2].PathName, " ") {
		t.Errorf("derived pname = %q", cats[2].PathName)
	}
	if cats[1].ParentID == nil || *cats[1].ParentID != 1 {
		t.Errorf("parent = %v, want 1", cats[1].ParentID)
	}
}

func TestDecodeCategories_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing id":   "- name: x\n",
		"missing name": "- id: 4\n",
		"self parent":  "- id: 4\n  name: x\n  parent: 4\n",
		"bad pname":    "- id: 4\n  name: x\n  pname: 'Not A Slug'\n",
		"not yaml":     "{{",
	}
	for name, doc := range cases {
		if _, err := DecodeCategories(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDecodeTags_Empty(t *testing.T) {
	tags, err := DecodeTags(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Errorf("got %d tags, want 0", len(tags))
	}
}

func TestBuildCategoryTree(t *testing.T) {
	one, two := uint64(1), uint64(2)
	roots, err := BuildCategoryTree([]Category{
		{ID: 3, Name: "c", ParentID: &one},
		{ID: 2, Name: "b", ParentID: &one},
		{ID: 1, Name: "a"},
		{ID: 4, Name: "d", ParentID: &two},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].ID != 1 {
		t.Fatalf("roots = %+v", roots)
	}
	kids := roots[0].Children
	if len(kids) != 2 || kids[0].ID != 2 || kids[1].ID != 3 {
		t.Fatalf("children not ordered by id: %+v", kids)
	}
	if len(kids[0].Children) != 1 || kids[0].Children[0].ID != 4 {
		t.Errorf("grandchild missing: %+v", kids[0].Children)
	}
}

func TestBuildCategoryTree_Errors(t *testing.T) {
	one, two, nine := uint64(1), uint64(2), uint64(9)
	cases := map[string][]Category{
		"orphan":    {{ID: 1, Name: "a", ParentID: &nine}},
		"duplicate": {{ID: 1, Name: "a"}, {ID: 1, Name: "b"}},
		"cycle":     {{ID: 1, Name: "a", ParentID: &two}, {ID: 2, Name: "b", ParentID: &one}},
	}
	for name, flat := range cases {
		if _, err := BuildCategoryTree(flat); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestIndex_Lookup(t *testing.T) {
	idx := mustIndex(t)
	cases := []struct {
		key  ingot.RKeyRaw
		want uint64
		ok   bool
	}{
		{ingot.NewRKeyRaw("2"), 2, true},
		{ingot.NewRKeyRaw("99"), 0, false},
		{ingot.NewRKeyRaw("technology"), 1, true},
		{ingot.NewRKeyRaw("GO"), 2, true},
		{ingot.NewRKeyRaw("tech/go"), 2, true},
		{ingot.NewRKeyRaw("/tech/go/"), 2, true},
		{ingot.NewRKeyRaw("static site"), 10, true},
		{ingot.NewRKeyRaw("nothing"), 0, false},
	}
	for _, c := range cases {
		got, ok := idx.Lookup(c.key)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("Lookup(%v) = %d, %v, want %d, %v", c.key, got, ok, c.want, c.ok)
		}
	}
}

func TestIndex_Resolve(t *testing.T) {
	idx := mustIndex(t)
	rec, err := ingot.ParseString("tags: go, static site, 11, ghost\ncategory: [tech, 'tech/go']\n\nT")
	if err != nil {
		t.Fatal(err)
	}

	missing := idx.Resolve(rec)
	if len(missing) != 1 || missing[0].Kind != KindTag || missing[0].Key.Name != "ghost" {
		t.Fatalf("missing = %v", missing)
	}
	if got := rec.Tags.IDs; len(got) != 2 || got[0] != 11 || got[1] != 10 {
		t.Errorf("tag ids = %v, want [11 10]", got)
	}
	if got := rec.Categories.IDs; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("category ids = %v, want [1 2]", got)
	}

	before := rec.Tags
	if again := idx.Resolve(rec); len(again) != 0 {
		t.Errorf("second resolve reported %v", again)
	}
	if len(rec.Tags.IDs) != len(before.IDs) {
		t.Errorf("second resolve changed ids: %v", rec.Tags.IDs)
	}
}

func TestIndex_TagsAndCategories(t *testing.T) {
	idx := mustIndex(t)
	tags := idx.Tags()
	if len(tags) != 2 || tags[0].ID != 10 {
		t.Errorf("tags = %+v", tags)
	}
	if roots := idx.Categories(); len(roots) != 2 {
		t.Errorf("roots = %d, want 2", len(roots))
	}
	if c, ok := idx.Category(2); !ok || c.Name != "Go" {
		t.Errorf("Category(2) = %+v, %v", c, ok)
	}
	if _, ok := idx.Tag(99); ok {
		t.Error("Tag(99) should not exist")
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "categories.yaml")
	if err := os.WriteFile(catPath, []byte(categoriesYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := LoadFiles(catPath, filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if len(idx.Tags()) != 0 {
		t.Errorf("missing tags file should give no tags")
	}
	if _, ok := idx.Lookup(ingot.NewRKeyRaw("go")); !ok {
		t.Error("category lookup failed")
	}

	empty, err := LoadFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Categories()) != 0 {
		t.Error("empty paths should give an empty index")
	}
}
