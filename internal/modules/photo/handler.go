package photo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 32 << 20

// Media opens stored blob content for serving.
type Media interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Handler exposes photo HTTP endpoints, including the /media blob serving.
type Handler struct {
	service Service
	media   Media
}

func NewHandler(service Service, media Media) *Handler {
	return &Handler{service: service, media: media}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/stores/{id}/photos", h.listPhotos)
	r.Post("/api/v1/stores/{id}/photos", h.uploadPhotos)
	r.Delete("/api/v1/photos/{id}", h.deletePhoto)
	r.Get("/media/*", h.serveMedia)
}

func (h *Handler) listPhotos(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "id")
	photos, err := h.service.ListPhotos(r.Context(), storeID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if photos == nil {
		photos = []*Photo{}
	}
	respond(w, http.StatusOK, photos)
}

// uploadPhotos accepts one or many files under the "photos" multipart field.
// Both the camera capture and the gallery multi-select land here. Files are
// processed sequentially; the first failure aborts the rest of the batch.
func (h *Handler) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		http.Error(w, "no files in photos field", http.StatusBadRequest)
		return
	}

	created := make([]*Photo, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := h.service.Upload(r.Context(), storeID, fh.Filename, f)
		f.Close()
		if err != nil {
			h.fail(w, err)
			return
		}
		created = append(created, p)
	}
	respond(w, http.StatusCreated, created)
}

func (h *Handler) deletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeletePhoto(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	rc, err := h.media.Open(r.Context(), key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer rc.Close()

	// Sniff the content type from the first bytes.
	buf := make([]byte, 512)
	n, err := io.ReadFull(rc, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(buf[:n]))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(buf[:n]); err != nil {
		return
	}
	io.Copy(w, rc)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrStoreNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("photo: %v", err)
		http.Error(w, "request failed", http.StatusInternalServerError)
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
