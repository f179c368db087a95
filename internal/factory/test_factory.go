package factory

import (
	"time"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/mocks"
	"github.com/deathroll-xyz/deathroll-go/internal/session"
	"github.com/deathroll-xyz/deathroll-go/internal/storage/memory"
	"github.com/deathroll-xyz/deathroll-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIdent  *mocks.MockIdent
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and in-memory storage. The wired hub has no live
// connections; coordinator tests build their own coordinator around a
// recording sender instead.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIdent := mocks.NewMockIdent("id")

	app := newWithDependencies(store, mockClock, mockRandom, mockIdent, session.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIdent:  mockIdent,
	}
}

// NewCoordinator builds a coordinator over the test app's controllers
// with a caller-supplied sender, bypassing the hub
func (t *TestApp) NewCoordinator(sender session.Sender, cfg session.Config) *session.Coordinator {
	return session.NewCoordinator(t.RoomController, t.GameController, sender, cfg, testutil.NopLogger())
}
