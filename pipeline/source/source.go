// Package source acquires raw product data for pipeline runs.
//
// A Source produces the raw map ExecutePipeline is fed with: a fixed
// value (Static), a JSON file (File), or a JSON endpoint (HTTP). The
// CLI picks a source from its flags; library callers can implement
// Source for whatever system their product data lives in.
package source

import "context"

// Source fetches one raw product data record.
type Source interface {
	// Fetch returns the raw product data map. The map is owned by the
	// caller; sources return a fresh copy per call.
	Fetch(ctx context.Context) (map[string]interface{}, error)
}

// Static serves a fixed product data map.
type Static struct {
	data map[string]interface{}
}

// NewStatic returns a source serving the given map.
func NewStatic(data map[string]interface{}) *Static {
	return &Static{data: data}
}

// Fetch returns a shallow copy of the configured map.
func (s *Static) Fetch(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}
