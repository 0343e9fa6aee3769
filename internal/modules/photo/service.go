package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/anilregmi/loadzone-backend/internal/blobstore"
	"github.com/google/uuid"
)

// ErrStoreNotFound is returned when an upload targets an unknown store id.
var ErrStoreNotFound = errors.New("store not found")

// Blobs is the slice of object storage the photo lifecycle needs.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Remove(ctx context.Context, keys ...string) error
	PublicURL(key string) string
}

// Service defines photo business logic.
type Service interface {
	ListPhotos(ctx context.Context, storeID string) ([]*Photo, error)
	Upload(ctx context.Context, storeID, fileName string, r io.Reader) (*Photo, error)
	DeletePhoto(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	blobs Blobs
}

func NewService(repo Repository, blobs Blobs) Service {
	return &service{repo: repo, blobs: blobs}
}

func (s *service) ListPhotos(ctx context.Context, storeID string) ([]*Photo, error) {
	return s.repo.ListByStore(ctx, storeID)
}

// Upload stores the file content as a blob and then records a photo row for
// it. The key is prefixed with the store id and a millisecond timestamp, so
// same-named files uploaded close together do not collide. The two steps are
// sequential, not atomic: a failure after the blob commit leaves an untracked
// blob behind, which the store deletion cascade sweeps up by prefix.
func (s *service) Upload(ctx context.Context, storeID, fileName string, r io.Reader) (*Photo, error) {
	sid, err := uuid.Parse(storeID)
	if err != nil {
		return nil, ErrStoreNotFound
	}
	ok, err := s.repo.StoreExists(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("checking store: %w", err)
	}
	if !ok {
		return nil, ErrStoreNotFound
	}

	// The key prefix must be the canonical uuid form: the deletion cascade
	// lists blobs by that prefix, and a key built from a non-canonical input
	// (uppercase) would survive it.
	key := sid.String() + "/" + strconv.FormatInt(time.Now().UnixMilli(), 10) +
		"_" + blobstore.SanitizeName(fileName)

	if _, err := s.blobs.Put(ctx, key, r); err != nil {
		return nil, fmt.Errorf("uploading blob: %w", err)
	}

	p := &Photo{
		ID:          uuid.New(),
		StoreID:     sid,
		URL:         s.blobs.PublicURL(key),
		StoragePath: key,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("recording photo: %w", err)
	}
	return p, nil
}

// DeletePhoto removes the blob first and only then the row. If the blob
// removal fails the row is kept, so the photo never becomes a row without
// content behind it.
func (s *service) DeletePhoto(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blobs.Remove(ctx, p.StoragePath); err != nil {
		return fmt.Errorf("removing blob: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
