package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo adapts a *mongo.Collection to the Documents interface.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

func (m *Mongo) InsertOne(ctx context.Context, doc any) error {
	res, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if res.InsertedID == nil {
		return ErrNotAcknowledged
	}
	return nil
}

func (m *Mongo) FindOne(ctx context.Context, filter bson.M, out any) error {
	err := m.coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return err
}

func (m *Mongo) FindAll(ctx context.Context, filter bson.M, opts FindOptions, out any) error {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

func (m *Mongo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return m.coll.CountDocuments(ctx, filter)
}

func (m *Mongo) UpdateOne(ctx context.Context, filter bson.M, update any) (int64, error) {
	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (m *Mongo) FindOneAndUpdate(ctx context.Context, filter bson.M, update any, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return err
}

func (m *Mongo) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *Mongo) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
