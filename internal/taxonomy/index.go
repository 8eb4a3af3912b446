package taxonomy

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/starford/nibi/internal/ingot"
)

// Kind distinguishes the two reference lists of an ingot.
type Kind string

const (
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
)

// lookup maps folded names onto ids for one kind.
type lookup struct {
	ids    map[uint64]struct{}
	names  map[string]uint64
	pnames map[string]uint64
	paths  map[string]uint64
}

func newLookup() lookup {
	return lookup{
		ids:    map[uint64]struct{}{},
		names:  map[string]uint64{},
		pnames: map[string]uint64{},
		paths:  map[string]uint64{},
	}
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (l lookup) find(k ingot.RKeyRaw) (uint64, bool) {
	if k.IsID {
		_, ok := l.ids[k.ID]
		return k.ID, ok
	}
	name := fold(k.Name)
	if id, ok := l.names[name]; ok {
		return id, true
	}
	if id, ok := l.pnames[name]; ok {
		return id, true
	}
	id, ok := l.paths[strings.Trim(name, "/")]
	return id, ok
}

// Index answers reference lookups. It is immutable once built and safe for
// concurrent use.
type Index struct {
	roots      []*Category
	categories map[uint64]*Category
	tags       map[uint64]Tag
	cat        lookup
	tag        lookup
}

// NewIndex builds the category tree and the name tables. When names collide
// the first entry wins: categories in tree order, tags by id.
func NewIndex(cats []Category, tags []Tag) (*Index, error) {
	roots, err := BuildCategoryTree(cats)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		roots:      roots,
		categories: map[uint64]*Category{},
		tags:       map[uint64]Tag{},
		cat:        newLookup(),
		tag:        newLookup(),
	}

	var walk func(prefix string, cs []*Category)
	walk = func(prefix string, cs []*Category) {
		for _, c := range cs {
			path := fold(c.PathName)
			if prefix != "" {
				path = prefix + "/" + path
			}
			idx.categories[c.ID] = c
			idx.cat.add(c.ID, c.Name, c.PathName)
			idx.cat.paths[path] = c.ID
			walk(path, c.Children)
		}
	}
	walk("", roots)

	for _, t := range tags {
		if _, dup := idx.tags[t.ID]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate tag id %d", t.ID)
		}
		idx.tags[t.ID] = t
	}
	for _, id := range sortedKeys(idx.tags) {
		t := idx.tags[id]
		idx.tag.add(t.ID, t.Name, t.PathName)
	}
	return idx, nil
}

func (l lookup) add(id uint64, name, pname string) {
	l.ids[id] = struct{}{}
	if _, taken := l.names[fold(name)]; !taken {
		l.names[fold(name)] = id
	}
	if _, taken := l.pnames[fold(pname)]; !taken && pname != "" {
		l.pnames[fold(pname)] = id
	}
}

// Categories returns the root categories ordered by id.
func (x *Index) Categories() []*Category { return x.roots }

// Tags returns every tag ordered by id.
func (x *Index) Tags() []Tag {
	out := make([]Tag, 0, len(x.tags))
	for _, id := range sortedKeys(x.tags) {
		out = append(out, x.tags[id])
	}
	return out
}

// Category returns the category with id.
func (x *Index) Category(id uint64) (*Category, bool) {
	c, ok := x.categories[id]
	return c, ok
}

// Tag returns the tag with id.
func (x *Index) Tag(id uint64) (Tag, bool) {
	t, ok := x.tags[id]
	return t, ok
}

// Lookup resolves k against categories first, then tags.
func (x *Index) Lookup(k ingot.RKeyRaw) (uint64, bool) {
	if id, ok := x.cat.find(k); ok {
		return id, true
	}
	return x.tag.find(k)
}

// Resolver returns a resolver restricted to one kind.
func (x *Index) Resolver(kind Kind) ingot.Resolver {
	if kind == KindTag {
		return resolverFunc(x.tag.find)
	}
	return resolverFunc(x.cat.find)
}

type resolverFunc func(ingot.RKeyRaw) (uint64, bool)

func (f resolverFunc) Lookup(k ingot.RKeyRaw) (uint64, bool) { return f(k) }

// Unresolved is a reference that matched nothing.
type Unresolved struct {
	Kind Kind
	Key  ingot.RKeyRaw
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s %q", u.Kind, u.Key.String())
}

// Resolve collates the tag and category lists of rec in place and returns
// every reference that could not be resolved.
func (x *Index) Resolve(rec *ingot.Ingot) []Unresolved {
	var out []Unresolved
	var missing []ingot.RKeyRaw

	rec.Categories, missing = rec.Categories.Collate(x.Resolver(KindCategory))
	for _, k := range missing {
		out = append(out, Unresolved{Kind: KindCategory, Key: k})
	}
	rec.Tags, missing = rec.Tags.Collate(x.Resolver(KindTag))
	for _, k := range missing {
		out = append(out, Unresolved{Kind: KindTag, Key: k})
	}
	return out
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	return slices.Sorted(maps.Keys(m))
}
