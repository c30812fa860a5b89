package model

import (
	"context"
)

type SearchCache interface {
	// Load returns the cached documents for a query; ok is false on a miss
	Load(ctx context.Context, query string) (docs []Document, ok bool, err error)

	// Store saves the documents found for a query
	Store(ctx context.Context, query string, docs []Document) error
}
