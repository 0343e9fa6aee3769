package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/anilregmi/loadzone-backend/internal/modules/photo"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Blobs is the slice of object storage the deletion cascade needs.
type Blobs interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, keys ...string) error
}

// Service defines store business logic.
type Service interface {
	ListStores(ctx context.Context, query string) ([]*Store, error)
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Detail, error)
	UpdateHeader(ctx context.Context, id string, req UpdateHeaderRequest) (*Store, error)
	UpdateNotes(ctx context.Context, id string, req UpdateNotesRequest) (*Store, error)
	DeleteStore(ctx context.Context, id string) error
}

// CreateStoreRequest holds the data for creating a store.
type CreateStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// UpdateHeaderRequest holds the name/address edit of a store.
type UpdateHeaderRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// UpdateNotesRequest replaces the whole notes field of a store.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// Detail is the store detail view: the store row, its photos newest first,
// and derived map links.
type Detail struct {
	Store  *Store         `json:"store"`
	Photos []*photo.Photo `json:"photos"`
	Map    MapLinks       `json:"map"`
}

type service struct {
	repo   Repository
	photos photo.Repository
	blobs  Blobs
}

func NewService(repo Repository, photos photo.Repository, blobs Blobs) Service {
	return &service{repo: repo, photos: photos, blobs: blobs}
}

// ListStores returns all stores newest first. A non-empty query filters by
// case-insensitive substring match on name or address.
func (s *service) ListStores(ctx context.Context, query string) ([]*Store, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return stores, nil
	}

	filtered := make([]*Store, 0, len(stores))
	for _, st := range stores {
		if matchesQuery(st, q) {
			filtered = append(filtered, st)
		}
	}
	return filtered, nil
}

func matchesQuery(s *Store, q string) bool {
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Address), q)
}

func (s *service) CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	st := &Store{
		ID:      uuid.New(),
		Name:    name,
		Address: strings.TrimSpace(req.Address),
		Notes:   "",
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetStore loads the store row and its photos in parallel.
func (s *service) GetStore(ctx context.Context, id string) (*Detail, error) {
	var (
		st     *Store
		photos []*photo.Photo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st, err = s.repo.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		photos, err = s.photos.ListByStore(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if photos == nil {
		photos = []*photo.Photo{}
	}
	return &Detail{Store: st, Photos: photos, Map: MapLinksFor(st)}, nil
}

func (s *service) UpdateHeader(ctx context.Context, id string, req UpdateHeaderRequest) (*Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Name = name
	st.Address = strings.TrimSpace(req.Address)
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) UpdateNotes(ctx context.Context, id string, req UpdateNotesRequest) (*Store, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// The whole field is written; the empty string is a valid value.
	st.Notes = req.Notes
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteStore runs the deletion cascade: blobs under the store's prefix,
// then photo rows, then the store row. A failure aborts the remaining steps
// with no compensation; each step is idempotent, so the cascade can be
// retried until it completes.
func (s *service) DeleteStore(ctx context.Context, id string) error {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	keys, err := s.blobs.List(ctx, st.ID.String()+"/")
	if err != nil {
		return fmt.Errorf("listing photo blobs: %w", err)
	}
	if len(keys) > 0 {
		if err := s.blobs.Remove(ctx, keys...); err != nil {
			return fmt.Errorf("removing photo blobs: %w", err)
		}
	}

	if err := s.photos.DeleteByStore(ctx, id); err != nil {
		return fmt.Errorf("deleting photo rows: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
