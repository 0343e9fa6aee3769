package store

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/anilregmi/loadzone-backend/internal/modules/photo"
	"github.com/go-chi/chi/v5"
)

// Handler exposes store HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/stores", h.listStores)
	r.Post("/api/v1/stores", h.createStore)
	r.Get("/api/v1/stores/{id}", h.getStore)
	r.Put("/api/v1/stores/{id}", h.updateHeader)
	r.Put("/api/v1/stores/{id}/notes", h.updateNotes)
	r.Delete("/api/v1/stores/{id}", h.deleteStore)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	stores, err := h.service.ListStores(r.Context(), query)
	if err != nil {
		h.fail(w, err)
		return
	}
	if stores == nil {
		stores = []*Store{}
	}
	respond(w, http.StatusOK, stores)
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := h.service.CreateStore(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, st)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.service.GetStore(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, detail)
}

func (h *Handler) updateHeader(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateHeaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := h.service.UpdateHeader(r.Context(), id, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

func (h *Handler) updateNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := h.service.UpdateNotes(r.Context(), id, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

func (h *Handler) deleteStore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteStore(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNameRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, photo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("store: %v", err)
		http.Error(w, "request failed", http.StatusInternalServerError)
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
