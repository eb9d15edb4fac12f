package catalog

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name and collapses every run of other characters into an
// underscore.
func Slug(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "channel"
	}
	return slug
}

// IDGenerator produces channel identifiers of the form slug_xxxxxxxx.
type IDGenerator struct {
	next func() uuid.UUID
}

// NewIDGenerator returns a generator backed by random UUIDs.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: uuid.New}
}

// NewSequenceIDGenerator returns a generator whose identifiers are derived from
// namespace and a counter, so the same namespace yields the same sequence.
func NewSequenceIDGenerator(namespace string) *IDGenerator {
	space := uuid.NewSHA1(uuid.NameSpaceOID, []byte(namespace))
	var counter uint64
	return &IDGenerator{next: func() uuid.UUID {
		counter++
		return uuid.NewSHA1(space, []byte{
			byte(counter >> 56), byte(counter >> 48), byte(counter >> 40), byte(counter >> 32),
			byte(counter >> 24), byte(counter >> 16), byte(counter >> 8), byte(counter),
		})
	}}
}

// NewID returns an identifier for a channel called name.
func (g *IDGenerator) NewID(name string) string {
	id := g.next()
	return Slug(name) + "_" + strings.ReplaceAll(id.String(), "-", "")[:8]
}
