package stub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moamenhredeen/el-confluence/internal/confluence"
)

// NewRouter creates the chi router serving the content REST contract.
func NewRouter(store *PageStore, apiToken string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	h := &contentHandler{store: store}

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(BasicAuth(apiToken))
		r.Route("/rest/api/content", func(r chi.Router) {
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
		})
	})

	return r
}

type contentHandler struct {
	store *PageStore
}

// Health handles GET /health.
func (h *contentHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pages": count})
}

// Get handles GET /rest/api/content/{id}. The expand parameter is accepted
// but the stub always returns the fully expanded representation.
func (h *contentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := h.store.Get(id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "no content found with id "+id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Update handles PUT /rest/api/content/{id}. The declared version must be
// one ahead of the stored version or the write is rejected with 409.
func (h *contentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd confluence.PageUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if upd.ID == "" {
		upd.ID = id
	}
	if upd.ID != id {
		writeError(w, http.StatusBadRequest, "content id in body does not match path")
		return
	}
	if upd.Version.Number < 1 {
		writeError(w, http.StatusBadRequest, "version number is required")
		return
	}

	page, err := h.store.Update(&upd, time.Now().Unix())
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "no content found with id "+id)
		case errors.As(err, &conflict):
			writeError(w, http.StatusConflict, conflict.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the store's structured error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, confluence.APIError{StatusCode: status, Message: message})
}
