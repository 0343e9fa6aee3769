package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapLinksForAddress(t *testing.T) {
	links := MapLinksFor(&Store{Name: "Westfield", Address: "123 Main St, Richmond"})

	assert.Equal(t, "https://www.google.com/maps?q=123+Main+St%2C+Richmond&output=embed", links.Embed)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=123+Main+St%2C+Richmond", links.Directions)
}

func TestMapLinksForFallsBackToName(t *testing.T) {
	links := MapLinksFor(&Store{Name: "Aldi Richmond"})

	assert.Contains(t, links.Embed, "q=Aldi+Richmond")
}
