package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no store row exists for the given id.
	ErrNotFound = errors.New("store not found")
	// ErrNameRequired is returned when a save would leave the name empty.
	ErrNameRequired = errors.New("store name is required")
)

// Repository defines the interface for store data storage.
type Repository interface {
	Create(ctx context.Context, s *Store) error
	GetByID(ctx context.Context, id string) (*Store, error)
	List(ctx context.Context) ([]*Store, error)
	Update(ctx context.Context, s *Store) error
	Delete(ctx context.Context, id string) error
}
