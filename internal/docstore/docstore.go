// Package docstore is a minimal key-value document store contract with
// in-memory and SQL implementations.
//
// Documents live in named collections and are addressed by key. Data is a
// flat JSON object; Query matches one top-level field by string equality.
package docstore

import (
	"context"
	"fmt"
)

// Document is a stored document.
type Document struct {
	Key  string
	Data map[string]any
}

// String returns field as a string, or "" when missing or not a string.
func (d Document) String(field string) string {
	s, _ := d.Data[field].(string)
	return s
}

// Store is the document store contract.
//
// Get returns (nil, nil) when the document does not exist. Update merges
// fields into an existing document and returns common.ErrorNotFound when it
// is missing. Delete of a missing document is not an error.
type Store interface {
	Get(ctx context.Context, collection, key string) (*Document, error)
	Set(ctx context.Context, collection, key string, data map[string]any) error
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
	Query(ctx context.Context, collection, field, value string) ([]Document, error)
}

func cloneData(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func matches(data map[string]any, field, value string) bool {
	v, ok := data[field]
	if !ok {
		return false
	}
	if s, ok := v.(string); ok {
		return s == value
	}
	return fmt.Sprint(v) == value
}
