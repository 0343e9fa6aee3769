package store

import "net/url"

// MapLinks are derived map-provider URLs for a store's location. They are
// computed on read and never persisted.
type MapLinks struct {
	Embed      string `json:"embed"`
	Directions string `json:"directions"`
}

// MapLinksFor builds map URLs from the store's address, falling back to its
// name when no address is recorded.
func MapLinksFor(s *Store) MapLinks {
	q := s.Address
	if q == "" {
		q = s.Name
	}
	escaped := url.QueryEscape(q)
	return MapLinks{
		Embed:      "https://www.google.com/maps?q=" + escaped + "&output=embed",
		Directions: "https://www.google.com/maps/dir/?api=1&destination=" + escaped,
	}
}
