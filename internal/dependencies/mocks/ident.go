package mocks

import (
	"fmt"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/ident"
)

// MockIdent is a mock ID generator producing sequential IDs
type MockIdent struct {
	Prefix string
	next   int
}

// Ensure MockIdent implements Generator
var _ ident.Generator = (*MockIdent)(nil)

// NewMockIdent creates a MockIdent with the given prefix
func NewMockIdent(prefix string) *MockIdent {
	return &MockIdent{Prefix: prefix}
}

// NewID returns "<prefix>-1", "<prefix>-2", ...
func (g *MockIdent) NewID() string {
	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}
