// Package ingotservice coordinates ingot storage, the index, the taxonomy
// and rendering. The HTTP API, the MCP server and the CLI all go through it.
package ingotservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/starford/nibi/internal/apperr"
	"github.com/starford/nibi/internal/checksum"
	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/render"
	"github.com/starford/nibi/internal/storage"
	"github.com/starford/nibi/internal/taxonomy"
)

// IngotDetail is the full representation of one ingot.
type IngotDetail struct {
	Path       string       `json:"path"`
	Ingot      *ingot.Ingot `json:"ingot"`
	HTML       string       `json:"html"`
	Raw        string       `json:"raw"`
	Checksum   string       `json:"checksum"`
	Unresolved []string     `json:"unresolved"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// IngotListItem is a lightweight item in a list response.
type IngotListItem struct {
	Path       string    `json:"path"`
	ID         uint64    `json:"id"`
	PName      string    `json:"pname"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Status     string    `json:"status"`
	Target     string    `json:"to"`
	Published  time.Time `json:"published,omitzero"`
	Tags       []uint64  `json:"tags"`
	Categories []uint64  `json:"categories"`
	Checksum   string    `json:"checksum"`
	Issues     int       `json:"issues"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateInput describes a new ingot. When Content is blank the document is
// scaffolded from Title; when Path is empty it is derived from Title.
type CreateInput struct {
	Path    string
	Content string
	Title   string
}

// TermCount is one taxonomy entry with the number of ingots using it.
type TermCount struct {
	ID       uint64      `json:"id"`
	Name     string      `json:"name"`
	PathName string      `json:"pname"`
	Count    int         `json:"count"`
	Children []TermCount `json:"children,omitempty"`
}

// TaxonomyView is the category tree and tag list with usage counts.
type TaxonomyView struct {
	Categories []TermCount `json:"categories"`
	Tags       []TermCount `json:"tags"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	ix    *index.Indexer
	md    *render.Renderer
}

// NewService creates a new ingot service.
func NewService(store storage.Provider, ix *index.Indexer, md *render.Renderer) *Service {
	if md == nil {
		md = render.New()
	}
	return &Service{store: store, ix: ix, md: md}
}

// Get reads the ingot at path, parses it, resolves its references and
// renders its body.
func (s *Service) Get(_ context.Context, path string) (*IngotDetail, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(path, data)
}

// Create writes a new ingot and indexes it.
func (s *Service) Create(_ context.Context, in CreateInput) (*IngotDetail, error) {
	path, content := in.Path, in.Content
	if strings.TrimSpace(content) == "" {
		if strings.TrimSpace(in.Title) == "" {
			return nil, fmt.Errorf("ingotservice: create: %w", ingot.ErrEmpty)
		}
		content = string(Scaffold(in.Title, time.Now()))
	}
	if path == "" {
		path = PathFor(in.Title)
	}
	if !storage.IsIngot(path) {
		return nil, fmt.Errorf("ingotservice: create %q: %w", path, apperr.ErrBadPath)
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, fmt.Errorf("ingotservice: create %s: %w", path, apperr.ErrAlreadyExists)
	}

	data := []byte(content)
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, data); err != nil {
		return nil, err
	}
	return s.buildDetail(path, data)
}

// Update replaces the ingot at path. A non-empty ifMatch must equal the
// checksum of the current content.
func (s *Service) Update(_ context.Context, path string, content []byte, ifMatch string) (*IngotDetail, error) {
	existing, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if !checksum.Match(ifMatch, existing) {
		return nil, fmt.Errorf("ingotservice: update %s: %w", path, apperr.ErrConflict)
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil, fmt.Errorf("ingotservice: update %s: %w", path, ingot.ErrEmpty)
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content)
}

// Delete removes an ingot from storage and the index.
func (s *Service) Delete(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("ingotservice: delete %s: %w", path, apperr.ErrNotFound)
		}
		return err
	}
	return s.ix.DB().DeleteIngot(path)
}

// Move renames an ingot and re-indexes it under its new path.
func (s *Service) Move(_ context.Context, from, to string) (*IngotDetail, error) {
	if !storage.IsIngot(to) {
		return nil, fmt.Errorf("ingotservice: move to %q: %w", to, apperr.ErrBadPath)
	}
	if _, err := s.read(from); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(to); err == nil {
		return nil, fmt.Errorf("ingotservice: move to %s: %w", to, apperr.ErrAlreadyExists)
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.ix.DB().DeleteIngot(from); err != nil {
		return nil, err
	}
	data, err := s.read(to)
	if err != nil {
		return nil, err
	}
	if err := s.IndexFile(to, data); err != nil {
		return nil, err
	}
	return s.buildDetail(to, data)
}

// List returns one page of indexed ingots and the total match count.
func (s *Service) List(_ context.Context, f index.ListFilter) ([]IngotListItem, int, error) {
	rows, total, err := s.ix.DB().ListIngots(f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]IngotListItem, len(rows))
	for i, r := range rows {
		items[i] = IngotListItem{
			Path:       r.Path,
			ID:         r.ID,
			PName:      r.PName,
			Title:      r.Title,
			Excerpt:    r.Excerpt,
			Status:     r.Status,
			Target:     r.Target,
			Published:  r.Published,
			Tags:       nonNilSlice(r.Tags),
			Categories: nonNilSlice(r.Categories),
			Checksum:   r.Checksum,
			Issues:     r.Issues,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	results, err := s.ix.DB().Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(results), nil
}

// Parse parses content without storing it. Strict parse failures are
// returned as errors wrapping ingot.ErrInvalid.
func (s *Service) Parse(_ context.Context, content []byte, opts ...ingot.Option) (*IngotDetail, error) {
	return s.buildDetail("", content, opts...)
}

// IndexFile parses data and upserts it into the index.
func (s *Service) IndexFile(path string, data []byte) error {
	_, err := s.ix.IndexFile(path, data)
	return err
}

// Taxonomy returns the category tree and tags with per-term ingot counts.
func (s *Service) Taxonomy(_ context.Context) (*TaxonomyView, error) {
	view := &TaxonomyView{Categories: []TermCount{}, Tags: []TermCount{}}
	tax := s.ix.Taxonomy()
	if tax == nil {
		return view, nil
	}
	catCounts, err := s.ix.DB().TermCounts(index.TermCategory)
	if err != nil {
		return nil, err
	}
	tagCounts, err := s.ix.DB().TermCounts(index.TermTag)
	if err != nil {
		return nil, err
	}

	var walk func(cs []*taxonomy.Category) []TermCount
	walk = func(cs []*taxonomy.Category) []TermCount {
		out := make([]TermCount, 0, len(cs))
		for _, c := range cs {
			out = append(out, TermCount{
				ID:       c.ID,
				Name:     c.Name,
				PathName: c.PathName,
				Count:    catCounts[c.ID],
				Children: walk(c.Children),
			})
		}
		return out
	}
	view.Categories = walk(tax.Categories())
	for _, t := range tax.Tags() {
		view.Tags = append(view.Tags, TermCount{ID: t.ID, Name: t.Name, PathName: t.PathName, Count: tagCounts[t.ID]})
	}
	return view, nil
}

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("ingotservice: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// buildDetail constructs an IngotDetail from raw data without re-reading
// the file.
func (s *Service) buildDetail(path string, data []byte, opts ...ingot.Option) (*IngotDetail, error) {
	rec, missing, err := s.ix.Load(path, data, opts...)
	if err != nil {
		return nil, err
	}
	html, err := s.md.Render(rec.Content)
	if err != nil {
		return nil, err
	}
	unresolved := make([]string, len(missing))
	for i, u := range missing {
		unresolved[i] = u.String()
	}

	updated := time.Now()
	if path != "" {
		if row, err := s.ix.DB().GetIngot(path); err == nil {
			updated = row.UpdatedAt
		}
	}
	return &IngotDetail{
		Path:       path,
		Ingot:      rec,
		HTML:       string(html),
		Raw:        string(data),
		Checksum:   checksum.Sum(data),
		Unresolved: unresolved,
		UpdatedAt:  updated,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
