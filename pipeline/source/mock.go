package source

import (
	"context"
	"sync"
)

// Mock is a test implementation of Source.
//
// Use Mock in tests to feed pipelines fixed or failing input without
// touching the filesystem or network. It provides:
//   - Configurable response sequences
//   - Call counting
//   - Error injection
//   - Thread-safe operation
//
// Example usage:
//
//	mock := &Mock{
//	    Responses: []map[string]interface{}{
//	        {"name": "Serum A"},
//	        {"name": "Serum B"},
//	    },
//	}
//	raw, err := mock.Fetch(ctx)
//	// Returns {"name": "Serum A"}, then {"name": "Serum B"}
type Mock struct {
	// Responses contains the sequence of maps to return.
	// Each call to Fetch() returns the next response in order.
	// If all responses are consumed, the last response repeats.
	Responses []map[string]interface{}

	// Err, if set, will be returned by Fetch() instead of a response.
	Err error

	mu        sync.Mutex // Protects the counters
	callIndex int        // Tracks which response to return next
	calls     int
}

// Fetch implements the Source interface.
func (m *Mock) Fetch(ctx context.Context) (map[string]interface{}, error) {
	// Check context cancellation first (before acquiring lock)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return map[string]interface{}{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1 // Repeat last response
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// CallCount returns the number of times Fetch() has been called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// Reset clears the call counters.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = 0
	m.callIndex = 0
}
