package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shakilbd009/lead-finder/internal/db"
	"github.com/shakilbd009/lead-finder/internal/model"
)

var validIDRegex = regexp.MustCompile(`^[0-9a-f]{8}$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

const maxBodyBytes = 1 << 20 // 1 MB

// LeadResponse is a lead as the API sends it. Tags go out comma-joined,
// the way existing clients read them.
type LeadResponse struct {
	model.Lead
	Tags string `json:"tags"`
}

func toResponse(l model.Lead) LeadResponse {
	return LeadResponse{Lead: l, Tags: model.JoinList(l.Tags)}
}

type ListResponse struct {
	Output     []LeadResponse `json:"output"`
	Pagination PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type Handler struct {
	store *db.Store
	auth  *Auth
}

func New(store *db.Store, auth *Auth) *Handler {
	return &Handler{store: store, auth: auth}
}

func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func maxBodyMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"db":     "error",
			"detail": err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"db":     "ok",
	})
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Use(maxBodyMiddleware(maxBodyBytes))
		r.Use(requireJSON)
		r.Post("/login", h.auth.Login)
		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireBearer)
			// stats must be registered before anything that could match it as an ID
			r.Get("/leads/stats", h.GetStats)
			r.Get("/leads", h.ListLeads)
			r.Post("/leads", h.CreateLead)
			r.Get("/lead/{id}", h.GetLead)
			r.Put("/lead/{id}", h.UpdateLead)
			r.Delete("/lead/{id}", h.DeleteLead)
		})
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		slog.Error("stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get lead stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if err := model.ValidateStatus(status); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		if n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		if n < 0 {
			respondError(w, http.StatusBadRequest, "offset must be non-negative")
			return
		}
		offset = n
	}

	opts := model.ListOptions{
		Status: status,
		Tag:    strings.TrimSpace(q.Get("tag")),
		Limit:  limit,
		Offset: offset,
	}

	leads, err := h.store.List(r.Context(), opts)
	if err != nil {
		slog.Error("list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	total, err := h.store.Count(r.Context(), opts)
	if err != nil {
		slog.Error("count failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to count leads")
		return
	}

	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toResponse(l))
	}
	respondJSON(w, http.StatusOK, ListResponse{
		Output: out,
		Pagination: PaginationMeta{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(leads) < total,
		},
	})
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isValidID(id) {
		respondError(w, http.StatusBadRequest, "invalid lead ID format")
		return
	}
	l, err := h.store.Get(r.Context(), id)
	if err != nil {
		slog.Error("get failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}
	if l == nil {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}
	respondJSON(w, http.StatusOK, toResponse(*l))
}

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.store.Create(r.Context(), req)
	if err != nil {
		slog.Error("create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create lead")
		return
	}

	respondJSON(w, http.StatusCreated, toResponse(*l))
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isValidID(id) {
		respondError(w, http.StatusBadRequest, "invalid lead ID format")
		return
	}

	var patch model.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		slog.Error("update failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}
	if l == nil {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}

	respondJSON(w, http.StatusOK, toResponse(*l))
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isValidID(id) {
		respondError(w, http.StatusBadRequest, "invalid lead ID format")
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete lead")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
