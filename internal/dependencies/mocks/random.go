package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/chessgame-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// UUIDResults is a queue of results to return from UUID
	UUIDResults []string
	uuidIndex   int

	// generated counts fallback ids handed out once the queue is drained
	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// UUID returns the next queued result, or a sequential "id-N" once the queue is empty
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uuidIndex >= len(r.UUIDResults) {
		r.generated++
		return fmt.Sprintf("id-%d", r.generated)
	}
	result := r.UUIDResults[r.uuidIndex]
	r.uuidIndex++
	return result
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UUIDResults = append(r.UUIDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UUIDResults = nil
	r.uuidIndex = 0
	r.generated = 0
}
