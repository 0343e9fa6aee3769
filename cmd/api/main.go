package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/anilregmi/loadzone-backend/internal/blobstore"
	"github.com/anilregmi/loadzone-backend/internal/config"
	"github.com/anilregmi/loadzone-backend/internal/modules/photo"
	"github.com/anilregmi/loadzone-backend/internal/modules/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	blobs, err := blobstore.New(cfg.BlobDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal(err)
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Photos ──────────────────────────────────────────────
	photoRepo := photo.NewPostgresRepository(db)
	photoService := photo.NewService(photoRepo, blobs)
	photo.NewHandler(photoService, blobs).RegisterRoutes(router)

	// ── Stores ──────────────────────────────────────────────
	storeRepo := store.NewPostgresRepository(db)
	storeService := store.NewService(storeRepo, photoRepo, blobs)
	store.NewHandler(storeService).RegisterRoutes(router)

	// ── Web shell ───────────────────────────────────────────
	// Static list/detail pages plus the offline service worker.
	router.Handle("/*", http.FileServer(http.Dir(filepath.Clean(cfg.WebDir))))

	// ── Start Server ─────────────────────────────────────────
	fmt.Printf("Loadzone API server starting on :%s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, gzhttp.GzipHandler(router)))
}
