package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/nibi/internal/apperr"
	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/ingotservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *ingotservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *ingotservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ingotPath extracts the ingot path from the URL (everything after /api/ingots/).
// Supports encoded slashes from OpenAPI clients (e.g. posts%2Fhello.ingot).
func ingotPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeError maps service errors onto status codes. Unknown errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, op string, err error, attrs ...slog.Attr) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("ingot already exists"))
	case errors.Is(err, apperr.ErrBadPath):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
	case errors.Is(err, ingot.ErrEmpty):
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
	case errors.Is(err, ingot.ErrInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, invalidBody(err))
	default:
		args := []any{slog.String("error", err.Error())}
		for _, a := range attrs {
			args = append(args, a)
		}
		slog.Error("api: "+op+" failed", args...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListIngots handles GET /api/ingots.
//
//	@Summary		List ingots with optional pagination and filtering
//	@Tags			ingots
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			status		query		string	false	"Filter by status"	Enums(draft, publish, private)
//	@Param			to			query		string	false	"Filter by target"
//	@Param			tag			query		int		false	"Filter by tag id"
//	@Param			category	query		int		false	"Filter by category id"
//	@Param			sort		query		string	false	"Sort field, '-' prefix for descending"	Enums(published, -published, modified, -modified, title, path)
//	@Success		200			{object}	IngotListResponse
//	@Security		BearerAuth
//	@Router			/ingots [get]
func (h *Handler) ListIngots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	tag, _ := strconv.ParseUint(q.Get("tag"), 10, 64)
	category, _ := strconv.ParseUint(q.Get("category"), 10, 64)

	items, total, err := h.svc.List(r.Context(), index.ListFilter{
		Status:   q.Get("status"),
		Target:   q.Get("to"),
		Tag:      tag,
		Category: category,
		Sort:     q.Get("sort"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, "list ingots", err)
		return
	}
	writeJSON(w, http.StatusOK, IngotListResponse{Ingots: items, Total: total})
}

// GetIngot handles GET /api/ingots/*.
//
//	@Summary		Get a single ingot by path
//	@Tags			ingots
//	@Produce		json
//	@Param			path	path		string	true	"Ingot path"
//	@Success		200		{object}	IngotDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ingots/{path} [get]
func (h *Handler) GetIngot(w http.ResponseWriter, r *http.Request) {
	path := ingotPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	d, err := h.svc.Get(r.Context(), path)
	if err != nil {
		writeError(w, "get ingot", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// CreateIngot handles POST /api/ingots.
//
//	@Summary		Create a new ingot
//	@Tags			ingots
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateIngotRequest	true	"Ingot to create"
//	@Success		201		{object}	IngotDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ingots [post]
func (h *Handler) CreateIngot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateIngotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" && req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path or title is required"))
		return
	}
	d, err := h.svc.Create(r.Context(), ingotservice.CreateInput{
		Path:    req.Path,
		Content: req.Content,
		Title:   req.Title,
	})
	if err != nil {
		writeError(w, "create ingot", err, slog.String("path", req.Path))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusCreated, d)
}

// UpdateIngot handles PUT /api/ingots/*.
//
//	@Summary		Update an ingot with optimistic concurrency
//	@Tags			ingots
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Ingot path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateIngotRequest	true	"Updated content"
//	@Success		200			{object}	IngotDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ingots/{path} [put]
func (h *Handler) UpdateIngot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	path := ingotPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateIngotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	d, err := h.svc.Update(r.Context(), path, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update ingot", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// DeleteIngot handles DELETE /api/ingots/*.
//
//	@Summary		Delete an ingot
//	@Tags			ingots
//	@Param			path	path	string	true	"Ingot path"
//	@Success		204		"Ingot deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ingots/{path} [delete]
func (h *Handler) DeleteIngot(w http.ResponseWriter, r *http.Request) {
	path := ingotPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), path); err != nil {
		writeError(w, "delete ingot", err, slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveIngot handles POST /api/ingots/move.
//
//	@Summary		Rename an ingot
//	@Tags			ingots
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveIngotRequest	true	"Source and target paths"
//	@Success		200		{object}	IngotDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ingots/move [post]
func (h *Handler) MoveIngot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req MoveIngotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	d, err := h.svc.Move(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, "move ingot", err, slog.String("from", req.From), slog.String("to", req.To))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Parse handles POST /api/parse.
//
//	@Summary		Parse an ingot document without storing it
//	@Tags			ingots
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Document to parse"
//	@Success		200		{object}	IngotDetail
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	var opts []ingot.Option
	if req.Strict {
		opts = append(opts, ingot.WithStrict(true))
	}
	d, err := h.svc.Parse(r.Context(), []byte(req.Content), opts...)
	if err != nil {
		writeError(w, "parse", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across ingots
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Taxonomy handles GET /api/taxonomy.
//
//	@Summary		Category tree and tags with usage counts
//	@Tags			taxonomy
//	@Produce		json
//	@Success		200	{object}	TaxonomyResponse
//	@Security		BearerAuth
//	@Router			/taxonomy [get]
func (h *Handler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Taxonomy(r.Context())
	if err != nil {
		writeError(w, "taxonomy", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
