package ident

import "github.com/google/uuid"

// Generator produces unique identifiers for players, rolls, and other
// entities. Injected so tests can use predictable IDs; timestamp-based
// uniqueness is not acceptable under rapid concurrent use.
type Generator interface {
	NewID() string
}

// UUIDGenerator implements Generator using random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a new random UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
