package snapshot

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
)

// Mongo collection defaults.
const (
	defaultMongoDatabase   = "taskweave"
	defaultMongoCollection = "snapshots"
)

// mongoDoc wraps the snapshot with a fixed document id so every save
// replaces the previous one.
type mongoDoc struct {
	ID   string          `bson:"_id"`
	Data graph.GraphData `bson:"data"`
}

// MongoStore persists the snapshot as one document in MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	docID  string
}

// NewMongoStore connects to uri and stores the snapshot in the taskweave
// database under docID. An empty docID stores a single shared snapshot.
func NewMongoStore(ctx context.Context, uri, docID string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotStore, err, "connect to mongodb")
	}
	if docID == "" {
		docID = "default"
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(defaultMongoDatabase).Collection(defaultMongoCollection),
		docID:  docID,
	}, nil
}

// Load reads the snapshot document. A missing document reports ok=false.
func (s *MongoStore) Load(ctx context.Context) (graph.GraphData, bool, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.docID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return graph.GraphData{}, false, nil
	}
	if err != nil {
		return graph.GraphData{}, false, errors.Wrap(errors.ErrCodeSnapshotStore, err, "find snapshot %s", s.docID)
	}
	return doc.Data, true, nil
}

// Save upserts the snapshot document, replacing the previous state.
func (s *MongoStore) Save(ctx context.Context, data graph.GraphData) error {
	doc := mongoDoc{ID: s.docID, Data: data}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.docID}, doc, opts); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotStore, err, "replace snapshot %s", s.docID)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
