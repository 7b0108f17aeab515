package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chessgame-go/internal/dependencies/mocks"
	"github.com/mcoot/chessgame-go/internal/services/auth"
	"github.com/mcoot/chessgame-go/internal/services/rules"
	"github.com/mcoot/chessgame-go/internal/storage/memory"
	"github.com/mcoot/chessgame-go/internal/testutil"
)

// TestTokenSecret signs tokens issued by a TestApp
const TestTokenSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, rules.NewChessEngine(), TestAuthConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestAuthConfig returns an auth config with a fixed secret and the cheapest bcrypt cost
func TestAuthConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.TokenSecret = TestTokenSecret
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}
