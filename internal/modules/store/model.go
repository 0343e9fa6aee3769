package store

import (
	"time"

	"github.com/google/uuid"
)

// Store is a retail location with loading-zone instructions. Notes holds the
// free-text instructions drivers record for the location.
type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
