package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookbuddy/go-services/pkg/metrics"
)

// MongoStore is the hosted-database backend. Documents keep the same shape
// as the local emulation: a string "id" field assigned by the store, string
// RFC 3339 timestamps, caller fields stored flat. The Mongo "_id" is never
// exposed.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore ensures a unique index on the id field of the collections
// the services own and returns the store.
func NewMongoStore(ctx context.Context, client *mongo.Client, dbName string) (*MongoStore, error) {
	s := &MongoStore{db: client.Database(dbName)}
	for _, name := range []string{CollectionBooks, CollectionRequests} {
		idx := mongo.IndexModel{
			Keys:    bson.D{{Key: FieldID, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, idx); err != nil {
			return nil, fmt.Errorf("ensure id index on %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *MongoStore) Add(ctx context.Context, col CollectionRef, data Fields) (string, error) {
	metrics.StoreOperations.WithLabelValues("add", "mongo").Inc()

	doc := make(bson.M, len(data)+2)
	for k, v := range data {
		doc[k] = v
	}
	id := nextID()
	doc[FieldID] = id
	doc[FieldCreatedAt] = timestamp()

	if _, err := s.db.Collection(col.Name).InsertOne(ctx, doc); err != nil {
		metrics.StoreErrors.WithLabelValues("add", "mongo").Inc()
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Get(ctx context.Context, ref DocRef) (DocumentSnapshot, error) {
	metrics.StoreOperations.WithLabelValues("get", "mongo").Inc()

	var doc bson.M
	err := s.db.Collection(ref.Collection).FindOne(ctx, bson.M{FieldID: ref.ID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return DocumentSnapshot{ID: ref.ID}, nil
	}
	if err != nil {
		metrics.StoreErrors.WithLabelValues("get", "mongo").Inc()
		return DocumentSnapshot{}, err
	}
	return DocumentSnapshot{ID: ref.ID, fields: fieldsFromBSON(doc)}, nil
}

func (s *MongoStore) GetAll(ctx context.Context, q Query) (QuerySnapshot, error) {
	metrics.StoreOperations.WithLabelValues("list", "mongo").Inc()

	cur, err := s.db.Collection(q.Collection.Name).Find(ctx, mongoFilter(q.Filters))
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list", "mongo").Inc()
		return QuerySnapshot{}, err
	}
	defer cur.Close(ctx)

	snaps := []DocumentSnapshot{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			metrics.StoreErrors.WithLabelValues("list", "mongo").Inc()
			return QuerySnapshot{}, err
		}
		fields := fieldsFromBSON(doc)
		id, _ := fields[FieldID].(string)
		snaps = append(snaps, DocumentSnapshot{ID: id, fields: fields})
	}
	if err := cur.Err(); err != nil {
		metrics.StoreErrors.WithLabelValues("list", "mongo").Inc()
		return QuerySnapshot{}, err
	}
	return QuerySnapshot{Docs: snaps, Empty: len(snaps) == 0, Size: len(snaps)}, nil
}

func (s *MongoStore) Update(ctx context.Context, ref DocRef, data Fields) error {
	metrics.StoreOperations.WithLabelValues("update", "mongo").Inc()

	set := make(bson.M, len(data)+1)
	for k, v := range data {
		set[k] = v
	}
	set[FieldUpdatedAt] = timestamp()

	res, err := s.db.Collection(ref.Collection).UpdateOne(ctx, bson.M{FieldID: ref.ID}, bson.M{"$set": set})
	if err != nil {
		metrics.StoreErrors.WithLabelValues("update", "mongo").Inc()
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, ref DocRef) error {
	metrics.StoreOperations.WithLabelValues("delete", "mongo").Inc()

	// missing documents are tolerated: delete is a no-op, not an error
	if _, err := s.db.Collection(ref.Collection).DeleteOne(ctx, bson.M{FieldID: ref.ID}); err != nil {
		metrics.StoreErrors.WithLabelValues("delete", "mongo").Inc()
		return err
	}
	return nil
}

// mongoFilter translates predicates to a Mongo filter document. Unknown
// operators are skipped so they match everything, same as the emulation.
func mongoFilter(filters []Filter) bson.M {
	clauses := bson.A{}
	for _, f := range filters {
		switch f.Op {
		case "==":
			clauses = append(clauses, bson.M{f.Field: f.Value})
		case "!=":
			clauses = append(clauses, bson.M{f.Field: bson.M{"$ne": f.Value}})
		case ">":
			clauses = append(clauses, bson.M{f.Field: bson.M{"$gt": f.Value}})
		case "<":
			clauses = append(clauses, bson.M{f.Field: bson.M{"$lt": f.Value}})
		}
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

func fieldsFromBSON(doc bson.M) Fields {
	fields := make(Fields, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		fields[k] = v
	}
	return fields
}
