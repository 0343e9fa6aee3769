package photo

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no photo row exists for the given id.
var ErrNotFound = errors.New("photo not found")

// Repository defines the interface for photo row storage.
type Repository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByStore(ctx context.Context, storeID string) ([]*Photo, error)
	Delete(ctx context.Context, id string) error
	DeleteByStore(ctx context.Context, storeID string) error
	// StoreExists reports whether the owning store row exists. Uploads check
	// it before writing any blob, so an upload to a store that never existed
	// cannot leave an orphaned blob behind.
	StoreExists(ctx context.Context, storeID string) (bool, error)
}
