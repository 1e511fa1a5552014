package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// File reads product data from a JSON file holding a single object.
type File struct {
	path string
}

// NewFile returns a source reading from the given path. The file is
// read on every Fetch, so edits between runs are picked up.
func NewFile(path string) *File {
	return &File{path: path}
}

// Fetch reads and decodes the file.
func (f *File) Fetch(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read product file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse product file %s: %w", f.path, err)
	}
	return raw, nil
}
