package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Entry, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, entry Entry) error {
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, filterQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Entry, 0)
	for cursor.Next(ctx) {
		var item Entry
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, filterQuery(filter))
}

func filterQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.Resource != "" {
		query["resource"] = filter.Resource
	}
	if filter.Outcome != "" {
		query["outcome"] = filter.Outcome
	}
	return query
}
