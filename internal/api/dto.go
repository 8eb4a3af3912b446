package api

import (
	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingotservice"
)

// CreateIngotRequest is the request body for creating an ingot. Either
// content or title is required; path defaults to one derived from title.
type CreateIngotRequest struct {
	Path    string `json:"path" example:"posts/hello.ingot"`
	Content string `json:"content" example:"status: publish\n\nHello\n\nWorld"`
	Title   string `json:"title" example:"Hello"`
}

// UpdateIngotRequest is the request body for updating an ingot.
type UpdateIngotRequest struct {
	Content string `json:"content" example:"status: draft\n\nUpdated\n\nContent" validate:"required"`
}

// MoveIngotRequest is the request body for renaming an ingot.
type MoveIngotRequest struct {
	From string `json:"from" example:"drafts/hello.ingot" validate:"required"`
	To   string `json:"to" example:"posts/hello.ingot" validate:"required"`
}

// ParseRequest is the request body for an ad hoc parse.
type ParseRequest struct {
	Content string `json:"content" example:"tags: go, web\n\nTitle\n\nBody" validate:"required"`
	Strict  bool   `json:"strict"`
}

// IngotDetail is the full ingot response type (aliased from the domain layer).
type IngotDetail = ingotservice.IngotDetail

// IngotListItem is a lightweight item in a list response (aliased from the domain layer).
type IngotListItem = ingotservice.IngotListItem

// TaxonomyResponse is the category tree and tag list with usage counts.
type TaxonomyResponse = ingotservice.TaxonomyView

// IngotListResponse wraps paginated ingot listings.
type IngotListResponse struct {
	Ingots []IngotListItem `json:"ingots" validate:"required"`
	Total  int             `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
