package photo

import (
	"time"

	"github.com/google/uuid"
)

// Photo is an uploaded image attached to a single store. URL is where the
// image is served from; StoragePath is the blob key used for deletion.
type Photo struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	URL         string    `json:"url"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
