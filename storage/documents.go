// Package storage abstracts a single document collection of the
// authoritative store. The interface is deliberately narrow: it carries
// exactly the operations the repositories need, so tests can swap in an
// in-memory implementation and instrument call counts.
package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNoDocuments is returned by FindOne and FindOneAndUpdate when no
// document matches the filter. Lookups treat it as absence, not failure.
var ErrNoDocuments = errors.New("storage: no documents in result")

// ErrNotAcknowledged is returned when the store did not acknowledge a
// write. Callers must treat it like any other persistence failure and
// never expose partial state.
var ErrNotAcknowledged = errors.New("storage: write not acknowledged")

// FindOptions carries sort/skip/limit for multi-document reads.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// Documents is one queryable collection. Filters are bson maps and
// updates are either bson update documents ($set/$inc/$addToSet/$pull)
// or aggregation pipelines for atomic computed updates.
type Documents interface {
	InsertOne(ctx context.Context, doc any) error
	FindOne(ctx context.Context, filter bson.M, out any) error
	FindAll(ctx context.Context, filter bson.M, opts FindOptions, out any) error
	Count(ctx context.Context, filter bson.M) (int64, error)

	// UpdateOne returns the number of documents actually modified.
	UpdateOne(ctx context.Context, filter bson.M, update any) (int64, error)

	// FindOneAndUpdate applies update atomically and decodes the
	// post-update document into out.
	FindOneAndUpdate(ctx context.Context, filter bson.M, update any, out any) error

	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
}
