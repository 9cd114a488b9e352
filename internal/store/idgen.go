package store

import "github.com/oklog/ulid/v2"

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ULIDGenerator generates ULID-based IDs: a millisecond timestamp plus
// a random suffix, which keeps ids sortable by creation time.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
